package db

type Legislator struct {
	ID   int64
	Name string
}

type Proposal struct {
	ID               int64
	FileNumber       int64
	Title            string
	Status           string
	ProposalType     string
	IntroductionDate string
}

type VoteEvent struct {
	ID         int64
	ProposalID int64
	VoteDate   string
}

type Vote struct {
	LegislatorID int64
	VoteEventID  int64
	AyeVote      bool
}
