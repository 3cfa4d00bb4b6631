package codec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/augtree/pkg/codec"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() domain.Snapshot {
	return domain.Snapshot{
		Name: "web-01",
		Nodes: []domain.TreeNode{
			{Label: "app", Children: []domain.TreeNode{
				{Label: "mode", Value: domain.StringPtr("production")},
				{Label: "empty", Value: domain.StringPtr("")},
				{Label: "bare"},
			}},
		},
	}
}

func TestSnapshotRoundtrip(t *testing.T) {
	data, err := codec.Marshal(sample())
	require.NoError(t, err)

	var decoded domain.Snapshot
	require.NoError(t, codec.Unmarshal(data, &decoded))
	assert.Equal(t, sample(), decoded)
}

func TestMarshalDeterministic(t *testing.T) {
	first, err := codec.Marshal(sample())
	require.NoError(t, err)
	second, err := codec.Marshal(sample())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "same tree must encode to the same bytes")
}

func TestEncoderDecoderStream(t *testing.T) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf)
	require.NoError(t, enc.Encode(sample()))
	require.NoError(t, enc.Encode(domain.Snapshot{Name: "second"}))

	dec := codec.NewDecoder(&buf)
	var a, b domain.Snapshot
	require.NoError(t, dec.Decode(&a))
	require.NoError(t, dec.Decode(&b))
	assert.Equal(t, "web-01", a.Name)
	assert.Equal(t, "second", b.Name)
}

func TestDiagnose(t *testing.T) {
	data, err := codec.Marshal(domain.TreeNode{Label: "key", Value: domain.StringPtr("value")})
	require.NoError(t, err)

	diag, err := codec.Diagnose(data)
	require.NoError(t, err)
	assert.True(t, strings.Contains(diag, `"key"`), diag)
	assert.True(t, strings.Contains(diag, `"value"`), diag)
}
