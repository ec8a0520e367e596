package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignment_Check(t *testing.T) {
	tests := []struct {
		name string
		a    Assignment
		want string
	}{
		{
			name: "single accountable",
			a:    Assignment{AreaRequesting: RACIAccountable, AreaLegal: RACIConsulted},
			want: "",
		},
		{
			name: "accountable responsible counts as accountable",
			a:    Assignment{AreaRequesting: RACIAccountableResponsible, AreaBoard: RACIAccountable},
			want: MsgSingleAccountable,
		},
		{
			name: "only informed is still involvement",
			a:    Assignment{AreaFinancial: RACIInformed},
			want: "",
		},
		{
			name: "nobody involved",
			a:    NewAssignment(),
			want: MsgAreaInvolved,
		},
		{
			name: "unknown value",
			a:    Assignment{AreaLegal: RACI("X")},
			want: MsgInvalidRACI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Check())
		})
	}
}

func TestResponsibilityMatrix_Defaults(t *testing.T) {
	m := NewResponsibilityMatrix("s1")

	require.Len(t, m.Activities, 12)
	for _, act := range Activities {
		for _, area := range Areas {
			assert.Equal(t, RACINone, m.Get(act, area))
		}
	}
	assert.False(t, m.Complete())
}

func TestResponsibilityMatrix_Complete(t *testing.T) {
	m := NewResponsibilityMatrix("s1")
	for _, act := range Activities {
		m.Set(act, AreaAdministrative, RACIAccountable)
	}
	assert.True(t, m.Complete())

	m.Set(ActivityPaymentRelease, AreaFinancial, RACIAccountableResponsible)
	assert.False(t, m.Complete())
}

func TestResponsibilityMatrix_Normalize(t *testing.T) {
	m := &ResponsibilityMatrix{Activities: map[Activity]Assignment{
		ActivityContractRequest: {AreaRequesting: RACIAccountable},
	}}
	m.Normalize()

	assert.Len(t, m.Activities, len(Activities))
	assert.Equal(t, RACIAccountable, m.Get(ActivityContractRequest, AreaRequesting))
	assert.Equal(t, RACINone, m.Get(ActivityContractRequest, AreaBoard))
	assert.Equal(t, RACINone, m.Get(ActivityPaymentRelease, AreaLegal))
}

func TestResponsibilityMatrix_JSON(t *testing.T) {
	m := NewResponsibilityMatrix("s1")
	m.Set(ActivityFinalApproval, AreaBoard, RACIAccountable)

	b, err := json.Marshal(m)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	acts := out["activities"].(map[string]any)
	assert.Equal(t, "A", acts["finalApproval"].(map[string]any)["board"])
	assert.Equal(t, "-", acts["contractRequest"].(map[string]any)["requestingArea"])
}

func TestActivityValid(t *testing.T) {
	assert.True(t, ActivityContractSigning.Valid())
	assert.False(t, Activity("contractExecutionMonitoring").Valid())
	assert.True(t, AreaIntegrity.Valid())
	assert.False(t, Area("hr").Valid())
	assert.Equal(t, "activities.contractDraft.legal", ActivityContractDraft.Field(AreaLegal))
}
