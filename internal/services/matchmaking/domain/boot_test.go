package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestBoot() *BootVote {
	deadline := time.Date(2026, 8, 1, 12, 2, 0, 0, time.UTC)
	b := newBootVote("g1", "target", "afk", 3, deadline)
	b.seedVote("target", AnswerDeny)
	b.seedVote("initiator", AnswerAgree)
	b.seedVote("m1", AnswerPending)
	b.seedVote("m2", AnswerPending)
	b.seedVote("m3", AnswerPending)
	return b
}

func TestBootVoteResolvesOnThreshold(t *testing.T) {
	t.Parallel()

	b := newTestBoot()
	if resolved, _ := b.Outcome(); resolved {
		t.Fatal("vote must not resolve on seeds alone")
	}

	if err := b.CastVote("m1", true); err != nil {
		t.Fatalf("cast m1: %v", err)
	}
	if err := b.CastVote("m2", true); err != nil {
		t.Fatalf("cast m2: %v", err)
	}

	resolved, passed := b.Outcome()
	if !resolved || !passed {
		t.Fatalf("resolved=%v passed=%v, want pass at three agrees without waiting", resolved, passed)
	}
}

func TestBootVoteFailsEarlyWhenThresholdUnreachable(t *testing.T) {
	t.Parallel()

	b := newTestBoot()
	if err := b.CastVote("m1", false); err != nil {
		t.Fatalf("cast m1: %v", err)
	}
	if err := b.CastVote("m2", false); err != nil {
		t.Fatalf("cast m2: %v", err)
	}

	// One agree plus one possible remaining agree can never reach three.
	resolved, passed := b.Outcome()
	if !resolved || passed {
		t.Fatalf("resolved=%v passed=%v, want early fail", resolved, passed)
	}
}

func TestBootVoteRejectsDoubleVote(t *testing.T) {
	t.Parallel()

	b := newTestBoot()
	if err := b.CastVote("m1", true); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := b.CastVote("m1", false); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("second vote error = %v, want ErrAlreadyVoted", err)
	}
	if err := b.CastVote("initiator", true); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("initiator revote error = %v, want ErrAlreadyVoted (seeded agree)", err)
	}
}

func TestBootVoteRejectsOutsiders(t *testing.T) {
	t.Parallel()

	b := newTestBoot()
	if err := b.CastVote("stranger", true); !errors.Is(err, ErrTargetNotMember) {
		t.Fatalf("outsider vote error = %v, want ErrTargetNotMember", err)
	}
}

func TestBootVoteExpiry(t *testing.T) {
	t.Parallel()

	b := newTestBoot()
	if b.Expired(b.Deadline.Add(-time.Second)) {
		t.Fatal("vote must not be expired before its deadline")
	}
	if !b.Expired(b.Deadline.Add(time.Second)) {
		t.Fatal("vote must be expired after its deadline")
	}
}

func TestBootVoteStatusCounts(t *testing.T) {
	t.Parallel()

	b := newTestBoot()
	_ = b.CastVote("m1", true)

	status := b.Status(true)
	if status.VotedCount != 3 || status.AgreeCount != 2 {
		t.Fatalf("voted=%d agree=%d, want 3 voted (two seeds plus one) and 2 agrees", status.VotedCount, status.AgreeCount)
	}
	if status.Target != "target" || status.Required != 3 || !status.InProgress {
		t.Fatalf("unexpected status: %+v", status)
	}
}
