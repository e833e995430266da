package domain

import "log"

// createProposal registers a proposal for the given content. When the
// destination party already has an active proposal, that proposal is
// extended so a new wave of invitees joins it instead of forking a second
// one. Callers must hold e.mu.
func (e *Engine) createProposal(contentID ContentID, partyID PartyID) *Proposal {
	if partyID != "" {
		if party, ok := e.world.Party(partyID); ok {
			if existing, active := e.proposals[party.ProposalID()]; active {
				return existing
			}
		}
	}

	p := newProposal(e.nextProposalID, contentID, partyID, e.clock())
	e.nextProposalID++
	e.proposals[p.ID] = p
	if partyID != "" {
		if party, ok := e.world.Party(partyID); ok {
			party.SetProposal(p.ID)
		}
	}
	return p
}

// offerMember adds a candidate to the proposal's acceptance set, takes it
// off the search matrix while it decides, and notifies it. Candidates that
// previously declined this proposal are never re-invited. Callers must hold
// e.mu.
func (e *Engine) offerMember(p *Proposal, playerID PlayerID) bool {
	if p.Declined(playerID) {
		return false
	}
	if p.HasMember(playerID) {
		return true
	}
	player, ok := e.world.Player(playerID)
	if !ok || !player.Connected() {
		return false
	}

	p.AddMember(playerID)
	if p.State == ProposalInitiating {
		p.State = ProposalPending
	}
	e.search.Remove(playerID, player.RequestedContent())
	e.setPlayerState(player, StateProposal)
	e.ntf.ProposalUpdate(playerID, p.ID, p.State)
	return true
}

// AnswerProposal records a member's accept or decline. Answers from unknown
// proposals or non-members are ignored. A decline removes the decliner from
// the proposal and from the queue; the remaining members stay pending. When
// every member has accepted the proposal commits.
func (e *Engine) AnswerProposal(id ProposalID, playerID PlayerID, accept bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.proposals[id]
	if !ok || !p.HasMember(playerID) {
		return
	}

	if !accept {
		e.declineProposal(p, playerID)
		return
	}

	p.SetAnswer(playerID, AnswerAgree)
	for _, memberID := range p.Members() {
		e.ntf.ProposalUpdate(memberID, p.ID, p.State)
	}
	if p.AllAccepted() && e.proposalComplete(p) {
		e.commitProposal(p)
	}
}

// proposalComplete reports whether the acceptance set has reached the
// content's full group headcount. In debug mode two members suffice.
func (e *Engine) proposalComplete(p *Proposal) bool {
	if e.cfg.Debug {
		return p.MemberCount() >= 2
	}
	content, ok := e.catalog.Lookup(p.ContentID)
	if !ok {
		log.Printf("matchmaking: proposal %d references unknown content %s", p.ID, p.ContentID)
		return false
	}
	return p.MemberCount() >= content.GroupSize
}

// declineProposal drops the decliner from the proposal and from the active
// queue: it must re-join to search again. The proposal itself survives so
// later assembly waves can refill the vacated slot.
func (e *Engine) declineProposal(p *Proposal, decliner PlayerID) {
	p.RemoveDecliner(decliner)
	category := CategoryNone
	if entry, queued := e.queue.Entry(PlayerRef(decliner)); queued {
		category = entry.Category
	}
	e.queue.Remove(PlayerRef(decliner))

	if player, ok := e.world.Player(decliner); ok {
		e.setPlayerState(player, StateNone)
		e.ntf.ProposalUpdate(decliner, p.ID, ProposalFailed)
		e.ntf.QueueRemoved(decliner, category)
	}
	for _, memberID := range p.Members() {
		e.ntf.ProposalUpdate(memberID, p.ID, p.State)
	}

	if p.MemberCount() == 0 {
		e.removeProposal(p, ProposalFailed)
	}
}

// commitProposal materializes a fully accepted proposal: elect or reuse a
// leader, form or augment the party, narrow roles, resolve random content,
// and hand the group to the teleport path. Callers must hold e.mu.
func (e *Engine) commitProposal(p *Proposal) {
	members := p.Members()
	content, ok := e.catalog.Lookup(p.ContentID)
	if !ok {
		log.Printf("matchmaking: committing proposal %d with unknown content %s", p.ID, p.ContentID)
		e.removeProposal(p, ProposalFailed)
		return
	}

	party, ok := e.resolveDestinationParty(p, members)
	if !ok {
		e.removeProposal(p, ProposalFailed)
		return
	}

	// Fold members into the destination party.
	for _, memberID := range members {
		member, live := e.world.Player(memberID)
		if !live {
			continue
		}
		if current := member.PartyID(); current != party.ID() {
			if current != "" {
				if err := e.world.RemoveMember(current, memberID); err != nil {
					log.Printf("matchmaking: remove %s from party %s: %v", memberID, current, err)
				}
			}
			if err := e.world.AddMember(party.ID(), memberID); err != nil {
				log.Printf("matchmaking: add %s to party %s: %v", memberID, party.ID(), err)
			}
		}
	}

	// Final role assignment: narrow multi-role members to a single role
	// each, then commit the narrowed masks atomically.
	assignment := make(RoleAssignment, len(members))
	for _, memberID := range members {
		if member, live := e.world.Player(memberID); live {
			assignment[memberID] = member.Roles()
		}
	}
	narrowed := NarrowRoles(assignment, e.cfg.Roles, e.cfg.Debug)
	for memberID, mask := range narrowed {
		if member, live := e.world.Player(memberID); live {
			member.SetRoles(mask)
		}
	}

	resolved := e.resolveContent(party, content, members)
	party.SetDifficulty(resolved.Difficulty)
	party.SetContent(resolved.ID)

	p.State = ProposalSuccess
	for _, memberID := range members {
		e.ntf.ProposalUpdate(memberID, p.ID, ProposalSuccess)
		e.enterGroupFinder(memberID, party)
	}

	e.removeProposal(p, ProposalSuccess)
	e.EnterInstance(party.ID())
}

// resolveDestinationParty returns the party the proposal commits into,
// creating one led by the elected leader for group-less proposals.
func (e *Engine) resolveDestinationParty(p *Proposal, members []PlayerID) (Party, bool) {
	if p.Party != "" {
		party, ok := e.world.Party(p.Party)
		if !ok {
			log.Printf("matchmaking: proposal %d destination party %s is gone", p.ID, p.Party)
		}
		return party, ok
	}

	leaderID, ok := ElectLeader(members, e.world)
	if !ok {
		log.Printf("matchmaking: proposal %d has no electable leader", p.ID)
		return nil, false
	}
	if leader, live := e.world.Player(leaderID); live {
		if current := leader.PartyID(); current != "" {
			if err := e.world.RemoveMember(current, leaderID); err != nil {
				log.Printf("matchmaking: remove leader %s from party %s: %v", leaderID, current, err)
			}
		}
	}
	party, err := e.world.CreateParty(leaderID)
	if err != nil {
		log.Printf("matchmaking: create party for proposal %d: %v", p.ID, err)
		return nil, false
	}
	content, ok := e.catalog.Lookup(p.ContentID)
	category := CategoryDungeon
	if ok {
		category = content.Category
	}
	party.ConvertToGroupFinder(category)
	p.Party = party.ID()
	party.SetProposal(p.ID)
	return party, true
}

// resolveContent expands a random placeholder into one concrete instance
// every member qualifies for, picked uniformly. A party already bound to
// concrete content keeps it.
func (e *Engine) resolveContent(party Party, content *Content, members []PlayerID) *Content {
	if bound := party.ContentID(); bound != "" {
		if existing, ok := e.catalog.Lookup(bound); ok {
			return existing
		}
	}
	if !content.Random() {
		return content
	}

	options := e.elig.ExpandRandomForMembers(content, members, e.world)
	if len(options) == 0 {
		log.Printf("matchmaking: no eligible concrete content for %s, keeping placeholder", content.ID)
		return content
	}
	return options[e.randIntn(len(options))]
}

// removeProposal evicts the proposal from the table and clears the party
// binding. Callers must hold e.mu.
func (e *Engine) removeProposal(p *Proposal, state ProposalState) {
	p.State = state
	delete(e.proposals, p.ID)
	if p.Party != "" {
		if party, ok := e.world.Party(p.Party); ok && party.ProposalID() == p.ID {
			party.SetProposal(0)
		}
	}
}

// sweepProposals expires proposals outside their staleness window. Members
// still waiting are returned to the search matrix; they keep their queue
// slot. Callers must hold no engine lock.
func (e *Engine) sweepProposals() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	for _, p := range e.proposals {
		if p.Active(now, e.cfg.ProposalTTL) {
			continue
		}
		for _, memberID := range p.Members() {
			e.ntf.ProposalUpdate(memberID, p.ID, ProposalExpired)
			member, ok := e.world.Player(memberID)
			if !ok {
				continue
			}
			e.setPlayerState(member, StateQueued)
			if _, queued := e.queue.Entry(PlayerRef(memberID)); queued {
				e.search.Add(memberID, member.RequestedContent())
			}
		}
		e.removeProposal(p, ProposalExpired)
	}
}
