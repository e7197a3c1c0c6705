package graw

// PollOption is one choice of a poll.
type PollOption struct {
	ID        string
	Text      string
	VoteCount int
}

// PollData is the poll attached to a submission.
type PollData struct {
	Options            []PollOption
	TotalVoteCount     int
	VotingEndTimestamp float64
	// UserSelection is the id of the option the current user voted for.
	UserSelection string
}

func newPollData(data map[string]any) *PollData {
	p := &PollData{
		TotalVoteCount:     asInt(data["total_vote_count"]),
		VotingEndTimestamp: asFloat(data["voting_end_timestamp"]),
		UserSelection:      asString(data["user_selection"]),
	}
	for _, item := range asSlice(data["options"]) {
		m := asMap(item)
		p.Options = append(p.Options, PollOption{
			ID:        asString(m["id"]),
			Text:      asString(m["text"]),
			VoteCount: asInt(m["vote_count"]),
		})
	}
	return p
}

// Option returns the option with the given id.
func (p *PollData) Option(id string) (PollOption, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return PollOption{}, false
}

// UserSelectionOption returns the option the current user voted for.
func (p *PollData) UserSelectionOption() (PollOption, bool) {
	if p.UserSelection == "" {
		return PollOption{}, false
	}
	return p.Option(p.UserSelection)
}
