package models

import (
	"fmt"

	"github.com/debtflow/engine/pkg/identity"
)

func errVoteMessageMissingVote(id identity.ID) error {
	return fmt.Errorf("message %s: type=vote requires Content.Vote", id)
}

func errVoteOnNonVoteMessage(id identity.ID) error {
	return fmt.Errorf("message %s: Content.Vote set on non-vote message", id)
}
