package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRouting(t *testing.T) {
	raw := []byte(`{"type":"useSkill","skillId":11,"targetId":3,"targetPosition":{"x":1,"y":0,"z":2}}`)

	var env Envelope
	require.NoError(t, Decode(raw, &env))
	assert.Equal(t, CUseSkill, env.Type)

	var req UseSkillRequest
	require.NoError(t, Decode(raw, &req))
	assert.Equal(t, int32(11), req.SkillID)
	assert.Equal(t, int64(3), req.TargetID)
	require.NotNil(t, req.TargetPosition)
	assert.Equal(t, 2.0, req.TargetPosition.Z)
}

func TestEnvelopeRejectsGarbage(t *testing.T) {
	var env Envelope
	assert.Error(t, Decode([]byte(`{"type":`), &env))
}

func TestOutboundOmitsEmptyOptionalFields(t *testing.T) {
	raw, err := json.Marshal(&UseSkillRequest{SkillID: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "targetId")
	assert.NotContains(t, string(raw), "targetPosition")
}
