// Package domain implements the Duskhaven group finder: queue admission,
// the content search matrix, proposal negotiation, role validation, boot
// votes, and the instance-entry handoff.
//
// The engine owns only identifiers and its own tables. Player and party
// entities live in the world simulation and are re-resolved through the
// World interface on every operation; a reference that no longer resolves is
// treated as "already gone" and the surrounding operation continues for the
// remaining set.
package domain
