package phase

import (
	"github.com/debtflow/engine/pkg/identity"
	"github.com/debtflow/engine/pkg/models"
	"github.com/debtflow/engine/pkg/synth"
)

// runPlanning is Phase 4: emit an empty plan if there are no validated
// findings, otherwise run the Task Synthesizer (spec.md §4.7).
func (c *Controller) runPlanning(validated []models.Finding) models.RemediationPlan {
	scanID := string(identity.Prefixed("scan"))
	return synth.Synthesize(scanID, validated)
}
