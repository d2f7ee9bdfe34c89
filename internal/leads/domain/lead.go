// Package domain holds the lead lifecycle vocabulary: statuses, pipeline
// stages, the status/stage pairing rules, and the weighted scoring model.
package domain

// Lead statuses.
const (
	StatusProspect    = "Prospect"
	StatusQualified   = "Qualified"
	StatusNegotiation = "Negotiation"
	StatusWon         = "Won"
	StatusLost        = "Lost"
)

// Pipeline stages.
const (
	StageDiscovery    = "Discovery"
	StageProposalSent = "Proposal Sent"
	StageContractSent = "Contract Sent"
	StageNegotiation  = "Negotiation"
	StageClosedWon    = "Closed Won"
	StageClosedLost   = "Closed Lost"
)

// Market regions.
const (
	RegionNorthAmerica  = "North America"
	RegionEurope        = "Europe"
	RegionSoutheastAsia = "Southeast Asia"
	RegionSouthAmerica  = "South America"
	RegionMiddleEast    = "Middle East"
	RegionAfrica        = "Africa"
)

// Lead sources.
const (
	SourceReferral        = "Referral"
	SourceColdCall        = "Cold Call"
	SourceInboundWebLead  = "Inbound Web Lead"
	SourceTradeShow       = "Trade Show"
	SourcePartnerReferral = "Partner Referral"
	SourceAdCampaign      = "Ad Campaign"
)

// Statuses lists all lead statuses.
var Statuses = []string{StatusProspect, StatusQualified, StatusNegotiation, StatusWon, StatusLost}

// Stages lists all pipeline stages.
var Stages = []string{StageDiscovery, StageProposalSent, StageContractSent, StageNegotiation, StageClosedWon, StageClosedLost}

// Regions lists all market regions.
var Regions = []string{RegionNorthAmerica, RegionEurope, RegionSoutheastAsia, RegionSouthAmerica, RegionMiddleEast, RegionAfrica}

// Sources lists all lead sources.
var Sources = []string{SourceReferral, SourceColdCall, SourceInboundWebLead, SourceTradeShow, SourcePartnerReferral, SourceAdCampaign}

// StatusStages maps each lead status to the pipeline stages it may occupy.
// Closed statuses pin the stage; open statuses allow the working stages.
var StatusStages = map[string][]string{
	StatusProspect:    {StageDiscovery, StageProposalSent, StageContractSent, StageNegotiation},
	StatusQualified:   {StageDiscovery, StageProposalSent, StageContractSent, StageNegotiation},
	StatusNegotiation: {StageProposalSent, StageContractSent, StageNegotiation},
	StatusWon:         {StageClosedWon},
	StatusLost:        {StageClosedLost},
}

// ValidStatus reports whether s is a known lead status.
func ValidStatus(s string) bool {
	for _, status := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}

// ValidStageForStatus reports whether the stage is allowed for the status.
func ValidStageForStatus(status, stage string) bool {
	for _, allowed := range StatusStages[status] {
		if allowed == stage {
			return true
		}
	}
	return false
}

// IsClosed reports whether the status represents a finished deal.
func IsClosed(status string) bool {
	return status == StatusWon || status == StatusLost
}
