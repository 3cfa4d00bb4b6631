package compiler

import (
	"errors"
	"testing"

	"github.com/aretw0/augtree/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.Sequence
	}{
		{
			name:  "empty input",
			input: "",
			want:  domain.Sequence{},
		},
		{
			name:  "whitespace only",
			input: " \n\t ",
			want:  domain.Sequence{},
		},
		{
			name:  "quoted path and value with spaces",
			input: "set '/path/containing/ /space/' 'value with spaces'",
			want:  domain.Sequence{domain.Set{Path: "/path/containing/ /space/", Value: "value with spaces"}},
		},
		{
			name:  "backslashes in single quotes are literal",
			input: `set '/path' 'value\nwith\nnew\nlines'`,
			want:  domain.Sequence{domain.Set{Path: "/path", Value: `value\nwith\nnew\nlines`}},
		},
		{
			name:  "quotes of the other kind",
			input: `set '/path' '""'`,
			want:  domain.Sequence{domain.Set{Path: "/path", Value: `""`}},
		},
		{
			name:  "empty value",
			input: "set '/path' ''",
			want:  domain.Sequence{domain.Set{Path: "/path", Value: ""}},
		},
		{
			name:  "predicate path",
			input: `set '/path[.="pattern"]' ''`,
			want:  domain.Sequence{domain.Set{Path: `/path[.="pattern"]`, Value: ""}},
		},
		{
			name:  "escaped quotes inside double quotes",
			input: `set "/files/etc/network/interfaces/iface[.=\"eth0\"]/family" inet`,
			want:  domain.Sequence{domain.Set{Path: `/files/etc/network/interfaces/iface[.="eth0"]/family`, Value: "inet"}},
		},
		{
			name:  "hash is literal",
			input: "set /files/etc/hosts/#comment[1] 'a comment'",
			want:  domain.Sequence{domain.Set{Path: "/files/etc/hosts/#comment[1]", Value: "a comment"}},
		},
		{
			name:  "insert",
			input: "ins alias before /path",
			want:  domain.Sequence{domain.Insert{Label: "alias", Where: domain.PositionBefore, Path: "/path"}},
		},
		{
			name: "every command",
			input: `transform Hosts incl /etc/hosts
				load
				match /files/etc/hosts/*
				lensmatch 'AllowUsers/*' Sshd /etc/ssh/sshd_config
				ins alias after /files/etc/hosts/1/canonical
				set /files/etc/hosts/1/alias[1] pigiron
				rm /files/etc/hosts/2`,
			want: domain.Sequence{
				domain.Transform{Lens: "Hosts", Filter: domain.FilterInclude, File: "/etc/hosts"},
				domain.Load{},
				domain.Match{Path: "/files/etc/hosts/*"},
				domain.LensMatch{Path: "AllowUsers/*", Lens: "Sshd", File: "/etc/ssh/sshd_config"},
				domain.Insert{Label: "alias", Where: domain.PositionAfter, Path: "/files/etc/hosts/1/canonical"},
				domain.Set{Path: "/files/etc/hosts/1/alias[1]", Value: "pigiron"},
				domain.Remove{Path: "/files/etc/hosts/2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_MissingArgument(t *testing.T) {
	_, err := Parse("set '/path'")
	var missing *domain.MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, domain.CommandSet, missing.Command)
	assert.Equal(t, "value", missing.Param)
	assert.Empty(t, missing.Parsed)
	assert.Equal(t, `Missing argument "value" in "set" statement`, err.Error())
}

func TestParse_MissingTrailingArgument(t *testing.T) {
	_, err := Parse("set '/path' '' rm")

	var missing *domain.MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, domain.CommandRemove, missing.Command)
	assert.Equal(t, "path", missing.Param)
	if diff := cmp.Diff([]domain.Command{domain.Set{Path: "/path", Value: ""}}, missing.Parsed); diff != "" {
		t.Errorf("already parsed mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, err.Error(), "already parsed statements:\nset /path \"\"")
}

func TestParse_InvalidEnumValue(t *testing.T) {
	_, err := Parse("ins alias bfore /path")

	var invalid *domain.InvalidParamError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, domain.CommandInsert, invalid.Command)
	assert.Equal(t, "where", invalid.Err.Param)
	assert.Equal(t, "bfore", invalid.Err.Value)
	assert.Equal(t, "{before, after}", invalid.Err.Expected)

	var param *domain.ParamError
	require.ErrorAs(t, err, &param)
	assert.Equal(t, "Error parsing parameter value of command \"ins\":\nGiven \"where\" value: \"bfore\" doesn't match expected value: {before, after}", err.Error())
}

func TestParse_InvalidFilter(t *testing.T) {
	_, err := Parse("transform Hosts include /etc/hosts")

	var invalid *domain.InvalidParamError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "filter", invalid.Err.Param)
	assert.Equal(t, "{incl, excl}", invalid.Err.Expected)
}

func TestParse_EmptyNonEmptyParam(t *testing.T) {
	_, err := Parse("rm ''")

	var invalid *domain.InvalidParamError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "path", invalid.Err.Param)
	assert.Equal(t, "", invalid.Err.Value)
}

func TestParse_UnknownCommand(t *testing.T) {
	_, err := Parse("frobnicate /path")

	var unknown *domain.UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "frobnicate", unknown.Token)
	assert.Empty(t, unknown.Parsed)
	assert.Equal(t, `Incorrect command: "frobnicate"`, err.Error())
}

func TestParse_UnknownCommandAfterQuotingMistake(t *testing.T) {
	// The value was meant to be "ifconfig $IFACE up" but was left unquoted.
	_, err := Parse("set /files/iface/pre-up ifconfig $IFACE up")

	var unknown *domain.UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "$IFACE", unknown.Token)
	require.Len(t, unknown.Parsed, 1)
	assert.Equal(t, "Incorrect command or previous command quoting:\ninvalid token: $IFACE\nalready parsed:\nset /files/iface/pre-up ifconfig", err.Error())
}

func TestParse_TokenizerError(t *testing.T) {
	for _, input := range []string{"set '/path", `set /path "value`} {
		seq, err := Parse(input)

		var tokErr *domain.TokenizerError
		require.ErrorAs(t, err, &tokErr, input)
		assert.ErrorIs(t, err, domain.ErrCommandsParse)
		assert.Contains(t, err.Error(), "commands should be correctly quoted strings")
		assert.Nil(t, seq)
	}
}

func TestParse_AllOrNothing(t *testing.T) {
	seq, err := Parse("set /a b set /c d bogus")
	assert.Error(t, err)
	assert.Nil(t, seq)
}

func TestBuild(t *testing.T) {
	cmd, err := Build("ins", map[string]string{"label": "alias", "where": "after", "path": "/a"})
	require.NoError(t, err)
	assert.Equal(t, domain.Insert{Label: "alias", Where: domain.PositionAfter, Path: "/a"}, cmd)

	cmd, err = Build("load", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Load{}, cmd)

	_, err = Build("set", map[string]string{"path": "/a"})
	var missing *domain.MissingArgumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "value", missing.Param)

	_, err = Build("transform", map[string]string{"lens": "Hosts", "filter": "both", "file": "/etc/hosts"})
	assert.ErrorIs(t, err, domain.ErrCommandsParse)

	_, err = Build("mv", nil)
	var unknown *domain.UnknownCommandError
	assert.True(t, errors.As(err, &unknown))
}

func TestFormat_RoundTrips(t *testing.T) {
	seq := domain.Sequence{
		domain.Set{Path: `/files/etc/network/interfaces/iface[.="eth0"]/pre-up`, Value: "ifconfig $IFACE up"},
		domain.Set{Path: "/path", Value: ""},
		domain.Insert{Label: "alias", Where: domain.PositionBefore, Path: "/files/etc/hosts/1/alias[1]"},
		domain.Transform{Lens: "Hosts", Filter: domain.FilterExclude, File: "/etc/hosts"},
		domain.Load{},
	}

	got, err := Parse(Format(seq))
	require.NoError(t, err)
	if diff := cmp.Diff(seq, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParamSpecs(t *testing.T) {
	v, err := Anything("value").Validate("")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = NonEmpty("path").Validate("")
	assert.Error(t, err)

	_, err = OneOf("where", "before", "after").Validate("beforeX")
	assert.Error(t, err, "OneOf must match whole values only")
}
