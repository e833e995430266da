package domain_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/duskhaven/duskhaven/internal/services/matchmaking/domain"
	"github.com/duskhaven/duskhaven/internal/services/matchmaking/memworld"
)

type fixture struct {
	world     *memworld.Directory
	transport *memworld.Transport
	notify    *memworld.Recorder
	engine    *domain.Engine
	now       *time.Time
	cfg       domain.Config
}

func testCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Content{
		{
			ID: "deadmines", Name: "The Deadmines", Category: domain.CategoryDungeon,
			Difficulty: domain.DifficultyNormal, GroupSize: 5, MinLevel: 15, MaxLevel: 25,
			MapID: "dm", Entrance: domain.Position{X: 10, Y: 20},
		},
		{
			ID: "stockade", Name: "The Stockade", Category: domain.CategoryDungeon,
			Difficulty: domain.DifficultyNormal, GroupSize: 5, MinLevel: 15, MaxLevel: 30,
			MapID: "st",
		},
		{
			ID: "random-classic", Name: "Random Classic Dungeon", Category: domain.CategoryRandomDungeon,
			Difficulty: domain.DifficultyNormal, GroupSize: 5, MinLevel: 15, MaxLevel: 25,
		},
		{
			ID: "karazhan", Name: "Karazhan", Category: domain.CategoryRaid,
			Difficulty: domain.DifficultyRaid10, GroupSize: 3, MinLevel: 15, MaxLevel: 30,
			MapID: "kz", Entrance: domain.Position{X: 5},
		},
	})
}

func testRewards(catalog *domain.Catalog) *domain.RewardTable {
	return domain.LoadRewardTable([]domain.RewardRow{
		{
			ContentID: "random-classic", MaxLevel: 25,
			FirstTime: domain.Reward{Money: 100, Experience: 500},
			Repeat:    domain.Reward{Money: 50, Experience: 250},
		},
	}, catalog, 80, nil)
}

func newFixture(t *testing.T, mutate func(*domain.Config)) *fixture {
	t.Helper()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cfg := domain.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	f := &fixture{
		world:     memworld.NewDirectory(),
		transport: memworld.NewTransport(),
		notify:    memworld.NewRecorder(),
		now:       &now,
		cfg:       cfg,
	}

	catalog := testCatalog()
	engine, err := domain.NewEngine(domain.Deps{
		World:     f.world,
		Transport: f.transport,
		Notifier:  f.notify,
		Catalog:   catalog,
		Rewards:   testRewards(catalog),
		Clock:     func() time.Time { return *f.now },
		RandIntn:  func(int) int { return 0 },
	}, cfg)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	f.engine = engine
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

// fullTick runs one engine update large enough to trigger the full-update
// maintenance pass.
func (f *fixture) fullTick() {
	f.engine.Update(f.cfg.FullUpdateInterval)
}

func (f *fixture) addSolo(t *testing.T, id domain.PlayerID, gear int, roles domain.RoleMask, content ...domain.ContentID) *memworld.Player {
	t.Helper()
	p := memworld.NewPlayer(id, 20, gear).WithRoles(roles).WithRequested(content...)
	f.world.AddPlayer(p)
	return p
}

func (f *fixture) fiveForDeadmines(t *testing.T) []*memworld.Player {
	t.Helper()
	return []*memworld.Player{
		f.addSolo(t, "tank", 400, domain.RoleTank, "deadmines"),
		f.addSolo(t, "heal", 300, domain.RoleHealer, "deadmines"),
		f.addSolo(t, "d1", 200, domain.RoleDamage, "deadmines"),
		f.addSolo(t, "d2", 100, domain.RoleDamage, "deadmines"),
		f.addSolo(t, "d3", 50, domain.RoleDamage, "deadmines"),
	}
}

func (f *fixture) joinAll(t *testing.T, players []*memworld.Player, category domain.Category) {
	t.Helper()
	for _, p := range players {
		if got := f.engine.Join(p.ID(), category); got != domain.JoinOK {
			t.Fatalf("join %s = %s, want ok", p.ID(), got)
		}
	}
}

func (f *fixture) proposalIDFor(t *testing.T, id domain.PlayerID) domain.ProposalID {
	t.Helper()
	n, ok := f.notify.Last(id, memworld.KindProposalUpdate)
	if !ok {
		t.Fatalf("no proposal update delivered to %s", id)
	}
	return n.Proposal
}

func TestJoinSoloQueuesPlayer(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	p := f.addSolo(t, "p1", 100, domain.RoleDamage, "deadmines")

	if got := f.engine.Join("p1", domain.CategoryDungeon); got != domain.JoinOK {
		t.Fatalf("join = %s, want ok", got)
	}
	if p.State() != domain.StateQueued {
		t.Fatalf("state = %s, want queued", p.State())
	}
	n, ok := f.notify.Last("p1", memworld.KindJoinResult)
	if !ok || n.JoinResult != domain.JoinOK {
		t.Fatalf("join notification = %+v, want ok", n)
	}
}

func TestJoinRejectsWhileQueueDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(cfg *domain.Config) { cfg.QueueEnabled = false })
	f.addSolo(t, "p1", 100, domain.RoleDamage, "deadmines")

	if got := f.engine.Join("p1", domain.CategoryDungeon); got != domain.JoinErrQueueDisabled {
		t.Fatalf("join = %s, want queue disabled", got)
	}
}

func TestJoinRejectsNonLeaderPartyJoin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	leader := memworld.NewPlayer("leader", 20, 100).WithRoles(domain.RoleTank)
	member := memworld.NewPlayer("member", 20, 100).WithRoles(domain.RoleDamage)
	f.world.NewParty("g1", "leader", leader, member).WithRequested("deadmines")

	if got := f.engine.Join("member", domain.CategoryDungeon); got != domain.JoinErrNotLeader {
		t.Fatalf("join = %s, want not leader", got)
	}
}

func TestJoinRejectsRestrictedAndPenalized(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	restricted := f.addSolo(t, "arena", 100, domain.RoleDamage, "deadmines")
	restricted.SetRestricted(true)
	if got := f.engine.Join("arena", domain.CategoryDungeon); got != domain.JoinErrRestrictedActivity {
		t.Fatalf("join = %s, want restricted activity", got)
	}

	deserter := f.addSolo(t, "deserter", 100, domain.RoleDamage, "deadmines")
	deserter.ApplyPenalty(domain.PenaltyDeserter)
	if got := f.engine.Join("deserter", domain.CategoryDungeon); got != domain.JoinErrDeserter {
		t.Fatalf("join = %s, want deserter", got)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	p := f.addSolo(t, "p1", 100, domain.RoleDamage, "deadmines")
	f.engine.Join("p1", domain.CategoryDungeon)

	f.engine.Leave("p1")
	if p.State() != domain.StateNone {
		t.Fatalf("state = %s, want none after leave", p.State())
	}
	f.engine.Leave("p1")
	if p.State() != domain.StateNone {
		t.Fatalf("state = %s, want unchanged after second leave", p.State())
	}
}

func TestAssembleOffersProposalToFullBucket(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	players := f.fiveForDeadmines(t)
	f.joinAll(t, players, domain.CategoryDungeon)

	f.fullTick()

	for _, p := range players {
		if p.State() != domain.StateProposal {
			t.Fatalf("%s state = %s, want proposal", p.ID(), p.State())
		}
	}
}

func TestAssembleSkipsUndersizedBucket(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	players := f.fiveForDeadmines(t)[:4]
	f.joinAll(t, players, domain.CategoryDungeon)

	f.fullTick()

	for _, p := range players {
		if p.State() != domain.StateQueued {
			t.Fatalf("%s state = %s, want still queued", p.ID(), p.State())
		}
	}
}

func TestAllAcceptCommitsGroupAndTeleports(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	players := f.fiveForDeadmines(t)
	f.joinAll(t, players, domain.CategoryDungeon)
	f.fullTick()

	pid := f.proposalIDFor(t, "tank")
	for _, p := range players {
		f.engine.AnswerProposal(pid, p.ID(), true)
	}

	partyID := players[0].PartyID()
	if partyID == "" {
		t.Fatal("expected a party after full acceptance")
	}
	party, ok := f.world.Party(partyID)
	if !ok {
		t.Fatalf("party %s does not resolve", partyID)
	}
	if party.LeaderID() != "tank" {
		t.Fatalf("leader = %s, want tank (highest gear score)", party.LeaderID())
	}
	if party.ContentID() != "deadmines" {
		t.Fatalf("party content = %s, want deadmines", party.ContentID())
	}
	if party.ProposalID() != 0 {
		t.Fatalf("party proposal binding = %d, want cleared after commit", party.ProposalID())
	}

	for _, p := range players {
		if p.PartyID() != partyID {
			t.Fatalf("%s party = %s, want %s", p.ID(), p.PartyID(), partyID)
		}
		if p.State() != domain.StateInDungeon {
			t.Fatalf("%s state = %s, want in dungeon", p.ID(), p.State())
		}
		if !p.HasPenalty(domain.PenaltyCooldown) {
			t.Fatalf("%s missing cooldown penalty after entry", p.ID())
		}
		if !p.Roles().Single() {
			t.Fatalf("%s roles = %v, want narrowed to a single role", p.ID(), p.Roles())
		}
		dest, ok := f.transport.DestinationOf(p.ID())
		if !ok {
			t.Fatalf("%s was not teleported", p.ID())
		}
		if dest.MapID != "dm" || dest.Position.X != 10 {
			t.Fatalf("%s destination = %+v, want deadmines entrance", p.ID(), dest)
		}
	}
}

func TestDeclineRemovesOnlyDecliner(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	players := f.fiveForDeadmines(t)
	f.joinAll(t, players, domain.CategoryDungeon)
	f.fullTick()

	pid := f.proposalIDFor(t, "d3")
	f.engine.AnswerProposal(pid, "d3", false)

	decliner := players[4]
	if decliner.State() != domain.StateNone {
		t.Fatalf("decliner state = %s, want none", decliner.State())
	}
	n, ok := f.notify.Last("d3", memworld.KindQueueRemoved)
	if !ok || n.Category != domain.CategoryDungeon {
		t.Fatalf("decliner queue removal = %+v, want dungeon category", n)
	}
	for _, p := range players[:4] {
		if p.State() != domain.StateProposal {
			t.Fatalf("%s state = %s, want still pending in proposal", p.ID(), p.State())
		}
	}

	// The decliner must re-join to search again; re-admission works.
	if got := f.engine.Join("d3", domain.CategoryDungeon); got != domain.JoinOK {
		t.Fatalf("re-join after decline = %s, want ok", got)
	}
}

func TestProposalExpirySweepRestoresMembers(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	players := f.fiveForDeadmines(t)
	f.joinAll(t, players, domain.CategoryDungeon)
	f.fullTick()

	pid := f.proposalIDFor(t, "tank")
	f.advance(f.cfg.ProposalTTL + time.Minute)
	f.fullTick()

	for _, p := range players {
		found := false
		for _, n := range f.notify.For(p.ID()) {
			if n.Kind == memworld.KindProposalUpdate && n.Proposal == pid && n.State == domain.ProposalExpired {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s never saw the expiry notification", p.ID())
		}
	}

	// Members went back to the search matrix, so the same tick re-offers a
	// fresh proposal with a new identifier.
	next := f.proposalIDFor(t, "tank")
	if next == pid {
		t.Fatalf("expected a new proposal id after expiry, still %d", pid)
	}
}

func TestPartyCompletionFoldsSoloIn(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	leader := memworld.NewPlayer("leader", 20, 400).WithRoles(domain.RoleTank)
	heal := memworld.NewPlayer("heal", 20, 300).WithRoles(domain.RoleHealer)
	d1 := memworld.NewPlayer("d1", 20, 200).WithRoles(domain.RoleDamage)
	d2 := memworld.NewPlayer("d2", 20, 100).WithRoles(domain.RoleDamage)
	f.world.NewParty("g1", "leader", leader, heal, d1, d2).WithRequested("deadmines")
	solo := f.addSolo(t, "solo", 50, domain.RoleDamage, "deadmines")

	if got := f.engine.Join("leader", domain.CategoryDungeon); got != domain.JoinOK {
		t.Fatalf("party join = %s, want ok", got)
	}
	if got := f.engine.Join("solo", domain.CategoryDungeon); got != domain.JoinOK {
		t.Fatalf("solo join = %s, want ok", got)
	}

	f.fullTick()

	pid := f.proposalIDFor(t, "solo")
	for _, id := range []domain.PlayerID{"leader", "heal", "d1", "d2", "solo"} {
		f.engine.AnswerProposal(pid, id, true)
	}

	if solo.PartyID() != "g1" {
		t.Fatalf("solo party = %s, want folded into g1", solo.PartyID())
	}
	party, _ := f.world.Party("g1")
	if party.Size() != 5 {
		t.Fatalf("party size = %d, want 5", party.Size())
	}
	if party.ContentID() != "deadmines" {
		t.Fatalf("party content = %s, want deadmines", party.ContentID())
	}
	if party.LeaderID() != "leader" {
		t.Fatalf("leader = %s, existing party must keep its leader", party.LeaderID())
	}
}

func TestRandomContentResolvesToConcreteInstance(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	players := []*memworld.Player{
		f.addSolo(t, "tank", 400, domain.RoleTank, "random-classic"),
		f.addSolo(t, "heal", 300, domain.RoleHealer, "random-classic"),
		f.addSolo(t, "d1", 200, domain.RoleDamage, "random-classic"),
		f.addSolo(t, "d2", 100, domain.RoleDamage, "random-classic"),
		f.addSolo(t, "d3", 50, domain.RoleDamage, "random-classic"),
	}
	f.joinAll(t, players, domain.CategoryRandomDungeon)
	f.fullTick()

	pid := f.proposalIDFor(t, "tank")
	for _, p := range players {
		f.engine.AnswerProposal(pid, p.ID(), true)
	}

	party, ok := f.world.Party(players[0].PartyID())
	if !ok {
		t.Fatal("expected committed party")
	}
	// Deterministic rand picks the first eligible concrete row.
	if party.ContentID() != "deadmines" {
		t.Fatalf("resolved content = %s, want deadmines", party.ContentID())
	}
	dest, ok := f.transport.DestinationOf("heal")
	if !ok || dest.MapID != "dm" {
		t.Fatalf("destination = %+v, want deadmines map", dest)
	}
}

func TestWrongRolesTerminallyFailsQueuedParty(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	members := []*memworld.Player{
		memworld.NewPlayer("leader", 20, 100).WithRoles(domain.RoleDamage),
		memworld.NewPlayer("m1", 20, 100).WithRoles(domain.RoleDamage),
		memworld.NewPlayer("m2", 20, 100).WithRoles(domain.RoleDamage),
		memworld.NewPlayer("m3", 20, 100).WithRoles(domain.RoleDamage),
		memworld.NewPlayer("m4", 20, 100).WithRoles(domain.RoleDamage),
	}
	f.world.NewParty("g1", "leader", members...).WithRequested("deadmines")

	if got := f.engine.Join("leader", domain.CategoryDungeon); got != domain.JoinOK {
		t.Fatalf("party join = %s, want ok", got)
	}

	if f.engine.SetRoles("m1", domain.RoleDamage) {
		t.Fatal("an all-damage declaration must fail the role check")
	}
	for _, m := range members {
		if m.State() != domain.StateNone {
			t.Fatalf("%s state = %s, want none after terminal failure", m.ID(), m.State())
		}
	}
	n, ok := f.notify.Last("leader", memworld.KindJoinResult)
	if !ok || n.JoinResult != domain.JoinErrRoleCheckFailed {
		t.Fatalf("leader notification = %+v, want role check failed", n)
	}
}

func newBootFixture(t *testing.T) (*fixture, []*memworld.Player) {
	t.Helper()
	f := newFixture(t, nil)
	members := []*memworld.Player{
		memworld.NewPlayer("p1", 20, 400).WithRoles(domain.RoleTank),
		memworld.NewPlayer("p2", 20, 300).WithRoles(domain.RoleHealer),
		memworld.NewPlayer("p3", 20, 200).WithRoles(domain.RoleDamage),
		memworld.NewPlayer("p4", 20, 100).WithRoles(domain.RoleDamage),
		memworld.NewPlayer("p5", 20, 50).WithRoles(domain.RoleDamage),
	}
	party := f.world.NewParty("g1", "p1", members...)
	party.ConvertToGroupFinder(domain.CategoryDungeon)
	party.SetContent("deadmines")
	party.SetDifficulty(domain.DifficultyNormal)
	for _, m := range members {
		m.SetState(domain.StateInDungeon)
		m.SetTeleported(true)
	}
	return f, members
}

func TestBootVotePassRemovesTarget(t *testing.T) {
	t.Parallel()

	f, members := newBootFixture(t)
	if err := f.engine.InitBoot("p2", "p5", "afk"); err != nil {
		t.Fatalf("init boot: %v", err)
	}
	if err := f.engine.InitBoot("p3", "p4", "again"); !errors.Is(err, domain.ErrVoteInProgress) {
		t.Fatalf("second init error = %v, want ErrVoteInProgress", err)
	}

	if err := f.engine.CastBootVote("p3", true); err != nil {
		t.Fatalf("cast p3: %v", err)
	}
	if err := f.engine.CastBootVote("p4", true); err != nil {
		t.Fatalf("cast p4: %v", err)
	}

	party, _ := f.world.Party("g1")
	if party.Size() != 4 {
		t.Fatalf("party size = %d, want 4 after boot", party.Size())
	}
	if party.KicksLeft() != 2 {
		t.Fatalf("kicks left = %d, want 2", party.KicksLeft())
	}
	target := members[4]
	if target.PartyID() != "" {
		t.Fatalf("target party = %s, want removed", target.PartyID())
	}
	if target.State() != domain.StateNone {
		t.Fatalf("target state = %s, want none", target.State())
	}
	if !f.transport.Returned("p5") {
		t.Fatal("target must be returned to its anchor")
	}
	n, ok := f.notify.Last("p1", memworld.KindOfferContinue)
	if !ok || n.Content != "deadmines" {
		t.Fatalf("offer-continue = %+v, want delivered to leader", n)
	}
}

func TestBootVoteEarlyFailKeepsTarget(t *testing.T) {
	t.Parallel()

	f, members := newBootFixture(t)
	if err := f.engine.InitBoot("p2", "p5", "afk"); err != nil {
		t.Fatalf("init boot: %v", err)
	}
	if err := f.engine.CastBootVote("p3", false); err != nil {
		t.Fatalf("cast p3: %v", err)
	}
	if err := f.engine.CastBootVote("p4", false); err != nil {
		t.Fatalf("cast p4: %v", err)
	}

	party, _ := f.world.Party("g1")
	if party.Size() != 5 {
		t.Fatalf("party size = %d, want unchanged after failed vote", party.Size())
	}
	if members[4].State() != domain.StateInDungeon {
		t.Fatalf("target state = %s, want back in dungeon", members[4].State())
	}
	// The failed vote is gone; a new one may start.
	if err := f.engine.InitBoot("p3", "p4", "next"); err != nil {
		t.Fatalf("init after failed vote: %v", err)
	}
}

func TestBootVoteDeadlineSweep(t *testing.T) {
	t.Parallel()

	f, members := newBootFixture(t)
	if err := f.engine.InitBoot("p2", "p5", "afk"); err != nil {
		t.Fatalf("init boot: %v", err)
	}

	f.advance(f.cfg.BootTTL + time.Minute)
	f.fullTick()

	party, _ := f.world.Party("g1")
	if party.Size() != 5 {
		t.Fatalf("party size = %d, want unchanged after expired vote", party.Size())
	}
	if err := f.engine.CastBootVote("p3", true); !errors.Is(err, domain.ErrNoActiveVote) {
		t.Fatalf("vote after expiry error = %v, want ErrNoActiveVote", err)
	}
	if members[4].State() != domain.StateInDungeon {
		t.Fatalf("target state = %s, want in dungeon", members[4].State())
	}
}

func TestFinishContentGrantsRandomRewards(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	fresh := memworld.NewPlayer("fresh", 20, 100).WithRoles(domain.RoleDamage).WithRequested("random-classic")
	veteran := memworld.NewPlayer("veteran", 20, 100).WithRoles(domain.RoleTank).WithRequested("random-classic")
	veteran.MarkCompleted("random-classic")
	party := f.world.NewParty("g1", "fresh", fresh, veteran)
	party.ConvertToGroupFinder(domain.CategoryRandomDungeon)
	party.SetContent("deadmines")
	fresh.SetState(domain.StateInDungeon)
	veteran.SetState(domain.StateInDungeon)

	f.engine.FinishContent("g1")

	first, ok := f.notify.Last("fresh", memworld.KindRewardGranted)
	if !ok || !first.FirstTime || first.Reward.Money != 100 {
		t.Fatalf("fresh reward = %+v, want first-time money 100", first)
	}
	repeat, ok := f.notify.Last("veteran", memworld.KindRewardGranted)
	if !ok || repeat.FirstTime || repeat.Reward.Money != 50 {
		t.Fatalf("veteran reward = %+v, want repeat money 50", repeat)
	}
	if fresh.State() != domain.StateFinished {
		t.Fatalf("state = %s, want finished", fresh.State())
	}
}

func TestPlayerLeftGroupUpgradesPenalty(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	quitter := memworld.NewPlayer("quitter", 20, 100)
	quitter.ApplyPenalty(domain.PenaltyCooldown)
	quitter.SetState(domain.StateInDungeon)
	quitter.SetTeleported(true)
	f.world.AddPlayer(quitter)

	f.engine.PlayerLeftGroup("quitter")

	if quitter.HasPenalty(domain.PenaltyCooldown) {
		t.Fatal("cooldown must be cleared on early leave")
	}
	if !quitter.HasPenalty(domain.PenaltyDeserter) {
		t.Fatal("early leave must upgrade to deserter")
	}
	if !f.transport.Returned("quitter") {
		t.Fatal("quitter must be returned to its anchor")
	}
}

func TestPlayerLeftGroupAfterFinishKeepsCleanRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	done := memworld.NewPlayer("done", 20, 100)
	done.ApplyPenalty(domain.PenaltyCooldown)
	done.SetState(domain.StateFinished)
	f.world.AddPlayer(done)

	f.engine.PlayerLeftGroup("done")

	if done.HasPenalty(domain.PenaltyDeserter) {
		t.Fatal("leaving after completion must not apply deserter")
	}
}

func TestTeleportChecksAtEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	dead := memworld.NewPlayer("dead", 20, 100)
	dead.SetAlive(false)
	live := memworld.NewPlayer("live", 20, 100)
	party := f.world.NewParty("g1", "live", live, dead)
	party.SetContent("deadmines")
	party.SetDifficulty(domain.DifficultyNormal)

	f.engine.EnterInstance("g1")

	n, ok := f.notify.Last("dead", memworld.KindTeleportFailed)
	if !ok || n.Teleport != domain.TeleportErrPlayerDead {
		t.Fatalf("dead member notification = %+v, want player dead", n)
	}
	if _, ok := f.transport.DestinationOf("dead"); ok {
		t.Fatal("dead member must not be teleported")
	}
	if _, ok := f.transport.DestinationOf("live"); !ok {
		t.Fatal("live member must be teleported")
	}
}

func TestTeleportDifficultyMismatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	p := memworld.NewPlayer("p1", 20, 100)
	party := f.world.NewParty("g1", "p1", p)
	party.SetContent("deadmines")
	party.SetDifficulty(domain.DifficultyHeroic)

	f.engine.EnterInstance("g1")

	n, ok := f.notify.Last("p1", memworld.KindTeleportFailed)
	if !ok || n.Teleport != domain.TeleportErrDifficultyMismatch {
		t.Fatalf("notification = %+v, want difficulty mismatch", n)
	}
}

func TestLatecomerLandsOnLeaderPosition(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	leader := memworld.NewPlayer("leader", 20, 100)
	leader.SetLocation("dm", domain.Position{X: 55, Y: 66})
	leader.SetTeleported(true)
	late := memworld.NewPlayer("late", 20, 100)
	party := f.world.NewParty("g1", "leader", leader, late)
	party.SetContent("deadmines")
	party.SetDifficulty(domain.DifficultyNormal)

	f.engine.EnterInstance("g1")

	dest, ok := f.transport.DestinationOf("late")
	if !ok {
		t.Fatal("latecomer must be teleported")
	}
	if dest.Position.X != 55 || dest.Position.Y != 66 {
		t.Fatalf("destination = %+v, want leader position", dest)
	}
}

func TestQueueStatusAggregation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.addSolo(t, "tank", 400, domain.RoleTank, "deadmines")
	f.addSolo(t, "heal", 300, domain.RoleHealer, "deadmines")
	f.engine.Join("tank", domain.CategoryDungeon)
	f.engine.Join("heal", domain.CategoryDungeon)

	f.advance(30 * time.Second)
	f.fullTick()

	status := f.engine.QueueStatus(domain.CategoryDungeon)
	if status.Tanks != 1 || status.Healers != 1 || status.Damage != 0 {
		t.Fatalf("status = %+v, want one tank and one healer", status)
	}
	if status.AverageWait != 30*time.Second {
		t.Fatalf("average wait = %s, want 30s", status.AverageWait)
	}
}

func newRaidParty(f *fixture, size int) (*memworld.Party, []*memworld.Player) {
	members := make([]*memworld.Player, 0, size)
	roles := []domain.RoleMask{domain.RoleTank, domain.RoleHealer, domain.RoleDamage}
	for i := 0; i < size; i++ {
		id := domain.PlayerID(fmt.Sprintf("r%d", i+1))
		members = append(members, memworld.NewPlayer(id, 20, 100).WithRoles(roles[i%len(roles)]))
	}
	party := f.world.NewParty("raid1", members[0].ID(), members...).WithRaid().WithRequested("karazhan")
	return party, members
}

func TestRaidAtFullHeadcountEntersInstance(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(cfg *domain.Config) { cfg.RaidExtendEnabled = true })
	party, members := newRaidParty(f, 3)

	if got := f.engine.Join("r1", domain.CategoryRaid); got != domain.JoinOK {
		t.Fatalf("raid join = %s, want ok", got)
	}
	f.fullTick()

	if party.ContentID() != "karazhan" {
		t.Fatalf("party content = %q, want karazhan bound at full headcount", party.ContentID())
	}
	if party.Difficulty() != domain.DifficultyRaid10 {
		t.Fatalf("party difficulty = %d, want raid tier", party.Difficulty())
	}
	for _, m := range members {
		if m.State() != domain.StateInDungeon {
			t.Fatalf("%s state = %s, want in dungeon", m.ID(), m.State())
		}
		if !m.HasPenalty(domain.PenaltyCooldown) {
			t.Fatalf("%s missing cooldown penalty after entry", m.ID())
		}
		dest, ok := f.transport.DestinationOf(m.ID())
		if !ok {
			t.Fatalf("%s was not teleported", m.ID())
		}
		if dest.MapID != "kz" || dest.Position.X != 5 {
			t.Fatalf("%s destination = %+v, want raid entrance", m.ID(), dest)
		}
	}
}

func TestRaidBelowHeadcountStaysQueued(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(cfg *domain.Config) { cfg.RaidExtendEnabled = true })
	party, members := newRaidParty(f, 2)

	if got := f.engine.Join("r1", domain.CategoryRaid); got != domain.JoinOK {
		t.Fatalf("raid join = %s, want ok", got)
	}
	for i := 0; i < 10; i++ {
		f.fullTick()
	}

	if party.ContentID() != "" {
		t.Fatalf("party content = %q, want unbound while a slot is open", party.ContentID())
	}
	for _, m := range members {
		if m.State() != domain.StateQueued {
			t.Fatalf("%s state = %s, want still queued", m.ID(), m.State())
		}
		if _, ok := f.transport.DestinationOf(m.ID()); ok {
			t.Fatalf("%s must not be teleported before the raid fills", m.ID())
		}
	}
}

func TestRaidGrowsFromSoloQueueThenEnters(t *testing.T) {
	t.Parallel()

	f := newFixture(t, func(cfg *domain.Config) { cfg.RaidExtendEnabled = true })
	party, _ := newRaidParty(f, 2)
	solo := f.addSolo(t, "solo", 50, domain.RoleDamage, "karazhan")

	if got := f.engine.Join("r1", domain.CategoryRaid); got != domain.JoinOK {
		t.Fatalf("raid join = %s, want ok", got)
	}
	if got := f.engine.Join("solo", domain.CategoryRaid); got != domain.JoinOK {
		t.Fatalf("solo join = %s, want ok", got)
	}

	f.fullTick()
	pid := f.proposalIDFor(t, "solo")
	for _, id := range []domain.PlayerID{"r1", "r2", "solo"} {
		f.engine.AnswerProposal(pid, id, true)
	}

	if solo.PartyID() != "raid1" {
		t.Fatalf("solo party = %s, want folded into raid1", solo.PartyID())
	}
	if party.ContentID() != "karazhan" {
		t.Fatalf("party content = %q, want bound once the raid filled", party.ContentID())
	}
	if solo.State() != domain.StateInDungeon {
		t.Fatalf("solo state = %s, want in dungeon", solo.State())
	}
	dest, ok := f.transport.DestinationOf("solo")
	if !ok || dest.MapID != "kz" {
		t.Fatalf("solo destination = %+v, want raid map", dest)
	}
}

func TestRequestTeleportOutAndBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	p := memworld.NewPlayer("p1", 20, 100).WithRoles(domain.RoleTank)
	party := f.world.NewParty("g1", "p1", p)
	party.ConvertToGroupFinder(domain.CategoryDungeon)
	party.SetContent("deadmines")
	party.SetDifficulty(domain.DifficultyNormal)
	p.SetState(domain.StateInDungeon)
	p.SetTeleported(true)

	f.engine.RequestTeleport("p1", true)
	if !f.transport.Returned("p1") {
		t.Fatal("teleport out must return the player to its anchor")
	}
	if p.Teleported() {
		t.Fatal("teleport flag must clear on exit")
	}

	f.engine.RequestTeleport("p1", false)
	dest, ok := f.transport.DestinationOf("p1")
	if !ok {
		t.Fatal("teleport back in must move the player")
	}
	if dest.MapID != "dm" || dest.Position.X != 10 {
		t.Fatalf("destination = %+v, want instance entrance", dest)
	}
	if !p.Teleported() || p.State() != domain.StateInDungeon {
		t.Fatalf("state = %s teleported = %v, want back inside", p.State(), p.Teleported())
	}
}

func TestRequestTeleportRejectsDeadAndPartyless(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	loner := memworld.NewPlayer("loner", 20, 100)
	f.world.AddPlayer(loner)

	f.engine.RequestTeleport("loner", false)
	n, ok := f.notify.Last("loner", memworld.KindTeleportFailed)
	if !ok || n.Teleport != domain.TeleportErrNoParty {
		t.Fatalf("partyless notification = %+v, want no party", n)
	}

	dead := memworld.NewPlayer("dead", 20, 100)
	dead.SetAlive(false)
	party := f.world.NewParty("g1", "dead", dead)
	party.SetContent("deadmines")
	party.SetDifficulty(domain.DifficultyNormal)

	f.engine.RequestTeleport("dead", false)
	n, ok = f.notify.Last("dead", memworld.KindTeleportFailed)
	if !ok || n.Teleport != domain.TeleportErrPlayerDead {
		t.Fatalf("dead notification = %+v, want player dead", n)
	}
	if _, ok := f.transport.DestinationOf("dead"); ok {
		t.Fatal("dead player must not be teleported")
	}
}

func TestBootVoteThresholdScalesWithPartySize(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	members := make([]*memworld.Player, 0, 8)
	for i := 0; i < 8; i++ {
		id := domain.PlayerID(fmt.Sprintf("p%d", i+1))
		members = append(members, memworld.NewPlayer(id, 20, 100).WithRoles(domain.RoleDamage))
	}
	party := f.world.NewParty("g1", "p1", members...)
	party.ConvertToGroupFinder(domain.CategoryDungeon)
	party.SetContent("deadmines")
	party.SetDifficulty(domain.DifficultyNormal)
	for _, m := range members {
		m.SetState(domain.StateInDungeon)
		m.SetTeleported(true)
	}

	if err := f.engine.InitBoot("p2", "p8", "afk"); err != nil {
		t.Fatalf("init boot: %v", err)
	}

	// The configured floor of three agrees is not enough here; eight
	// members need a simple majority of five.
	for _, id := range []domain.PlayerID{"p3", "p4", "p5"} {
		if err := f.engine.CastBootVote(id, true); err != nil {
			t.Fatalf("cast %s: %v", id, err)
		}
	}
	if party.Size() != 8 {
		t.Fatalf("party size = %d, want 8 before the majority is reached", party.Size())
	}

	if err := f.engine.CastBootVote("p6", true); err != nil {
		t.Fatalf("cast p6: %v", err)
	}
	if party.Size() != 7 {
		t.Fatalf("party size = %d, want 7 after the fifth agree", party.Size())
	}
	if members[7].PartyID() != "" {
		t.Fatalf("target party = %s, want removed", members[7].PartyID())
	}
}

func TestIgnoredPlayersAreNotGroupedTogether(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	players := f.fiveForDeadmines(t)
	players[4].SetIgnored("tank")
	f.joinAll(t, players, domain.CategoryDungeon)

	f.fullTick()

	if players[4].State() != domain.StateQueued {
		t.Fatalf("ignoring member state = %s, want left in queue", players[4].State())
	}
}
