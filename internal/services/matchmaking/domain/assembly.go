package domain

// completeParties walks the category's party queue in insertion order and
// tries to fill each party's open slots from the solo queue. Invitees are
// folded into the party's active proposal when one exists, so a second wave
// extends it instead of forking.
func (e *Engine) completeParties(category Category) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, entry := range e.queue.Parties(category) {
		partyID := PartyID(entry.Ref.ID)
		party, ok := e.world.Party(partyID)
		if !ok {
			e.queue.Remove(entry.Ref)
			continue
		}
		e.completeParty(party, category)
	}
}

func (e *Engine) completeParty(party Party, category Category) {
	proposal, _ := e.proposals[party.ProposalID()]
	if proposal != nil && e.proposalComplete(proposal) {
		return
	}
	requested := party.RequestedContent()
	if proposal == nil && len(requested) == 0 {
		return
	}

	for _, solo := range e.queue.Players(category) {
		candidateID := PlayerID(solo.Ref.ID)
		candidate, ok := e.world.Player(candidateID)
		if !ok || !candidate.Connected() {
			continue
		}
		if candidate.State() != StateQueued {
			continue
		}

		if proposal == nil {
			shared := requested.Intersect(candidate.RequestedContent())
			if len(shared) == 0 {
				continue
			}
			if e.mutuallyIgnored(candidate, party.MemberIDs()) {
				continue
			}
			if !e.rolesFeasible(party.MemberIDs(), candidate) {
				continue
			}
			contentID := e.pickContent(shared)
			proposal = e.createProposal(contentID, party.ID())
			for _, memberID := range party.MemberIDs() {
				e.offerMember(proposal, memberID)
			}
		} else {
			if !e.search.Contains(proposal.ContentID, candidateID) {
				continue
			}
			if e.mutuallyIgnored(candidate, proposal.Members()) {
				continue
			}
			if !e.rolesFeasible(proposal.Members(), candidate) {
				continue
			}
		}

		e.offerMember(proposal, candidateID)
		if e.proposalComplete(proposal) {
			return
		}
	}
}

// createGroups assembles fresh groups out of the category's solo queue: for
// each content bucket with enough searchers, members are picked greedily in
// queue order subject to ignore lists and role feasibility, and a group-less
// proposal is offered to the picks.
func (e *Engine) createGroups(category Category) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, contentID := range e.search.Contents() {
		content, ok := e.catalog.Lookup(contentID)
		if !ok || content.Category != category {
			continue
		}
		target := content.GroupSize
		if e.cfg.Debug {
			target = 2
		}

		bucket := e.search.Bucket(contentID)
		if len(bucket) < target {
			continue
		}

		var chosen []PlayerID
		assignment := make(RoleAssignment)
		for _, candidateID := range bucket {
			candidate, ok := e.world.Player(candidateID)
			if !ok || !candidate.Connected() {
				continue
			}
			if candidate.State() != StateQueued {
				continue
			}
			if e.mutuallyIgnored(candidate, chosen) {
				continue
			}
			trial := assignment.Clone()
			trial[candidateID] = candidate.Roles()
			if !CheckRoles(trial, e.cfg.Roles, e.cfg.Debug) {
				continue
			}
			assignment = trial
			chosen = append(chosen, candidateID)
			if len(chosen) == target {
				break
			}
		}
		if len(chosen) < target {
			continue
		}

		proposal := e.createProposal(contentID, "")
		for _, candidateID := range chosen {
			e.offerMember(proposal, candidateID)
		}
	}
}

// extendRaids fills open raid slots from the solo raid queue, then sends
// raids that reached full headcount into their instance. Raids are never
// assembled from scratch; only pre-formed raid parties grow.
func (e *Engine) extendRaids(category Category) {
	e.completeParties(category)
	e.enterFullRaids(category)
}

// enterFullRaids walks the category's party queue and, for every
// group-finder raid at its content's full headcount with no proposal still
// pending, binds the resolved content and hands the party to the teleport
// path.
func (e *Engine) enterFullRaids(category Category) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, entry := range e.queue.Parties(category) {
		partyID := PartyID(entry.Ref.ID)
		party, ok := e.world.Party(partyID)
		if !ok || !party.GroupFinder() {
			continue
		}
		if _, active := e.proposals[party.ProposalID()]; active {
			continue
		}
		content := e.raidContentFor(party, category)
		if content == nil {
			continue
		}
		target := content.GroupSize
		if e.cfg.Debug {
			target = 2
		}
		if party.Size() < target {
			continue
		}

		party.SetDifficulty(content.Difficulty)
		party.SetContent(content.ID)
		for _, memberID := range party.MemberIDs() {
			e.enterGroupFinder(memberID, party)
		}
		e.EnterInstance(partyID)
	}
}

// raidContentFor resolves the concrete content for a raid party: the bound
// content when one is set, otherwise a uniform pick from the party's
// requested set.
func (e *Engine) raidContentFor(party Party, category Category) *Content {
	if bound := party.ContentID(); bound != "" {
		if content, ok := e.catalog.Lookup(bound); ok {
			return content
		}
	}
	requested := make(ContentSet)
	for id := range party.RequestedContent() {
		if content, ok := e.catalog.Lookup(id); ok && content.Category == category {
			requested.Add(id)
		}
	}
	if len(requested) == 0 {
		return nil
	}
	content, ok := e.catalog.Lookup(e.pickContent(requested))
	if !ok {
		return nil
	}
	return content
}

// mutuallyIgnored reports whether the candidate and any of the listed
// players ignore each other in either direction.
func (e *Engine) mutuallyIgnored(candidate Player, others []PlayerID) bool {
	for _, otherID := range others {
		if otherID == candidate.ID() {
			continue
		}
		if candidate.Ignores(otherID) {
			return true
		}
		if other, ok := e.world.Player(otherID); ok && other.Ignores(candidate.ID()) {
			return true
		}
	}
	return false
}

// rolesFeasible reports whether adding the candidate to the listed members
// still admits a valid composition.
func (e *Engine) rolesFeasible(members []PlayerID, candidate Player) bool {
	assignment := make(RoleAssignment, len(members)+1)
	for _, memberID := range members {
		if member, ok := e.world.Player(memberID); ok {
			assignment[memberID] = member.Roles()
		}
	}
	assignment[candidate.ID()] = candidate.Roles()
	return CheckRoles(assignment, e.cfg.Roles, e.cfg.Debug)
}

// pickContent selects one content identifier uniformly from the set.
func (e *Engine) pickContent(set ContentSet) ContentID {
	ids := set.Sorted()
	return ids[e.randIntn(len(ids))]
}
