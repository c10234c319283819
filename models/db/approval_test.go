package dbmodels

import (
	"testing"

	"expense-app-backend/models"

	"github.com/stretchr/testify/require"
)

func TestNextActionableStep(t *testing.T) {
	t.Run(`первый нерешенный шаг по порядку следования`, func(t *testing.T) {
		rec := Approval{
			Steps: []ApprovalStep{
				{StepOrder: 2, Status: models.ApprovalStatusPending},
				{StepOrder: 1, Status: models.ApprovalStatusPending},
			},
		}
		step := rec.NextActionableStep()
		require.NotNil(t, step)
		require.Equal(t, 1, step.StepOrder)
	})

	t.Run(`решенные шаги пропускаются`, func(t *testing.T) {
		rec := Approval{
			Steps: []ApprovalStep{
				{StepOrder: 1, Status: models.ApprovalStatusApproved},
				{StepOrder: 2, Status: models.ApprovalStatusPending},
			},
		}
		step := rec.NextActionableStep()
		require.NotNil(t, step)
		require.Equal(t, 2, step.StepOrder)
	})

	t.Run(`нет нерешенных шагов`, func(t *testing.T) {
		rec := Approval{
			Steps: []ApprovalStep{
				{StepOrder: 1, Status: models.ApprovalStatusApproved},
				{StepOrder: 2, Status: models.ApprovalStatusRejected},
			},
		}
		require.Nil(t, rec.NextActionableStep())
	})

	t.Run(`согласование без шагов`, func(t *testing.T) {
		rec := Approval{}
		require.Nil(t, rec.NextActionableStep())
	})
}

func TestAllStepsDecided(t *testing.T) {
	t.Run(`все шаги решены`, func(t *testing.T) {
		rec := Approval{
			Steps: []ApprovalStep{
				{StepOrder: 1, Status: models.ApprovalStatusApproved},
				{StepOrder: 2, Status: models.ApprovalStatusRejected},
			},
		}
		require.True(t, rec.AllStepsDecided())
	})

	t.Run(`остался нерешенный шаг`, func(t *testing.T) {
		rec := Approval{
			Steps: []ApprovalStep{
				{StepOrder: 1, Status: models.ApprovalStatusApproved},
				{StepOrder: 2, Status: models.ApprovalStatusPending},
			},
		}
		require.False(t, rec.AllStepsDecided())
	})

	t.Run(`без шагов считается решенным`, func(t *testing.T) {
		rec := Approval{}
		require.True(t, rec.AllStepsDecided())
	})
}
