package domain

// UserRole represents a user's single role in the system
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleManager  UserRole = "MANAGER"
	RoleSalesRep UserRole = "SALES_REP"
	RoleSupport  UserRole = "SUPPORT"
	RoleUser     UserRole = "USER"
)

// DisplayName returns a human readable role name
func (r UserRole) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleManager:
		return "Manager"
	case RoleSalesRep:
		return "Sales Representative"
	case RoleSupport:
		return "Support Staff"
	case RoleUser:
		return "Regular User"
	default:
		return string(r)
	}
}

// IsValid reports whether the role is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSalesRep, RoleSupport, RoleUser:
		return true
	}
	return false
}

// UserStatus represents account status
type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserInactive  UserStatus = "INACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
)

// LeadStatus represents lead progression status
type LeadStatus string

const (
	LeadNew         LeadStatus = "NEW"
	LeadContacted   LeadStatus = "CONTACTED"
	LeadQualified   LeadStatus = "QUALIFIED"
	LeadUnqualified LeadStatus = "UNQUALIFIED"
	LeadConverted   LeadStatus = "CONVERTED"
	LeadLost        LeadStatus = "LOST"
)

// LeadSource represents where a lead came from
type LeadSource string

const (
	SourceWebsite         LeadSource = "WEBSITE"
	SourceReferral        LeadSource = "REFERRAL"
	SourceSocialMedia     LeadSource = "SOCIAL_MEDIA"
	SourceEmailCampaign   LeadSource = "EMAIL_CAMPAIGN"
	SourceColdCall        LeadSource = "COLD_CALL"
	SourceTradeShow       LeadSource = "TRADE_SHOW"
	SourcePartner         LeadSource = "PARTNER"
	SourceAdvertisement   LeadSource = "ADVERTISEMENT"
	SourceWebinar         LeadSource = "WEBINAR"
	SourceContentDownload LeadSource = "CONTENT_DOWNLOAD"
	SourceOther           LeadSource = "OTHER"
)

// CustomerStatus represents customer account status
type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "ACTIVE"
	CustomerInactive CustomerStatus = "INACTIVE"
	CustomerProspect CustomerStatus = "PROSPECT"
)

// OpportunityStage represents the ordered sales pipeline stage
type OpportunityStage string

const (
	StageProspecting   OpportunityStage = "PROSPECTING"
	StageQualification OpportunityStage = "QUALIFICATION"
	StageNeedsAnalysis OpportunityStage = "NEEDS_ANALYSIS"
	StageProposal      OpportunityStage = "PROPOSAL"
	StageNegotiation   OpportunityStage = "NEGOTIATION"
	StageClosedWon     OpportunityStage = "CLOSED_WON"
	StageClosedLost    OpportunityStage = "CLOSED_LOST"
)

// OpportunityStatus represents the open/closed outcome of an opportunity
type OpportunityStatus string

const (
	OpportunityOpen OpportunityStatus = "OPEN"
	OpportunityWon  OpportunityStatus = "WON"
	OpportunityLost OpportunityStatus = "LOST"
)

// ActivityType represents the kind of activity
type ActivityType string

const (
	ActivityCall    ActivityType = "CALL"
	ActivityMeeting ActivityType = "MEETING"
	ActivityEmail   ActivityType = "EMAIL"
	ActivityTask    ActivityType = "TASK"
	ActivityNote    ActivityType = "NOTE"
)

// ActivityStatus represents activity completion status
type ActivityStatus string

const (
	ActivityPlanned    ActivityStatus = "PLANNED"
	ActivityInProgress ActivityStatus = "IN_PROGRESS"
	ActivityCompleted  ActivityStatus = "COMPLETED"
	ActivityCancelled  ActivityStatus = "CANCELLED"
)
