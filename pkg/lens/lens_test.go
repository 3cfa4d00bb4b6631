package lens_test

import (
	"testing"

	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/lens"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(label, value string) domain.TreeNode {
	return domain.TreeNode{Label: label, Value: domain.StringPtr(value)}
}

func TestHosts_Get(t *testing.T) {
	content := "# static table\n127.0.0.1\tlocalhost\n\n192.168.0.1 pigiron.example.com pigiron pig # lab box\n"

	nodes, err := lens.Hosts{}.Get([]byte(content))
	require.NoError(t, err)

	want := []domain.TreeNode{
		leaf("#comment", "static table"),
		{Label: "1", Children: []domain.TreeNode{leaf("ipaddr", "127.0.0.1"), leaf("canonical", "localhost")}},
		{Label: "2", Children: []domain.TreeNode{
			leaf("ipaddr", "192.168.0.1"),
			leaf("canonical", "pigiron.example.com"),
			leaf("alias", "pigiron"),
			leaf("alias", "pig"),
			leaf("#comment", "lab box"),
		}},
	}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestHosts_GetRejectsIncompleteEntry(t *testing.T) {
	_, err := lens.Hosts{}.Get([]byte("127.0.0.1 localhost\n10.0.0.1\n"))
	var lensErr *lens.Error
	require.ErrorAs(t, err, &lensErr)
	assert.Equal(t, 2, lensErr.Line)
}

func TestHosts_RoundTrip(t *testing.T) {
	content := "# static table\n127.0.0.1\tlocalhost\n192.168.0.1\tpigiron.example.com pigiron\t# lab box\n"

	nodes, err := lens.Hosts{}.Get([]byte(content))
	require.NoError(t, err)
	out, err := lens.Hosts{}.Put(nodes)
	require.NoError(t, err)
	assert.Equal(t, content, string(out))
}

func TestHosts_PutFailures(t *testing.T) {
	tests := []struct {
		name  string
		entry domain.TreeNode
		msg   string
	}{
		{
			name:  "missing ipaddr",
			entry: domain.TreeNode{Label: "01", Children: []domain.TreeNode{leaf("canonical", "a")}},
			msg:   "Hosts.lns: entry 01: missing ipaddr",
		},
		{
			name:  "canonical with spaces",
			entry: domain.TreeNode{Label: "1", Children: []domain.TreeNode{leaf("ipaddr", "10.0.0.1"), leaf("canonical", "a b")}},
			msg:   `Hosts.lns: entry 1: invalid canonical "a b"`,
		},
		{
			name:  "unknown child",
			entry: domain.TreeNode{Label: "1", Children: []domain.TreeNode{leaf("ipaddr", "10.0.0.1"), leaf("canonical", "a"), leaf("mac", "x")}},
			msg:   `Hosts.lns: entry 1: unexpected node "mac"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lens.Hosts{}.Put([]domain.TreeNode{tt.entry})
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestSimplevars_RoundTrip(t *testing.T) {
	content := "# defaults\nenabled = yes\nname = two words\n"

	nodes, err := lens.Simplevars{}.Get([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, []domain.TreeNode{
		leaf("#comment", "defaults"),
		leaf("enabled", "yes"),
		leaf("name", "two words"),
	}, nodes)

	out, err := lens.Simplevars{}.Put(nodes)
	require.NoError(t, err)
	assert.Equal(t, content, string(out))

	_, err = lens.Simplevars{}.Put([]domain.TreeNode{{Label: "bare"}})
	assert.EqualError(t, err, "Simplevars.lns: bare: missing value")
}

func TestSshd_Get(t *testing.T) {
	content := `# sshd
PermitRootLogin no
AllowUsers alice bob
Ciphers aes256-ctr,aes128-ctr
Match User carol Address 10.0.0.*
    X11Forwarding yes
`
	nodes, err := lens.Sshd{}.Get([]byte(content))
	require.NoError(t, err)

	want := []domain.TreeNode{
		leaf("#comment", "sshd"),
		leaf("PermitRootLogin", "no"),
		{Label: "AllowUsers", Children: []domain.TreeNode{leaf("1", "alice"), leaf("2", "bob")}},
		{Label: "Ciphers", Children: []domain.TreeNode{leaf("1", "aes256-ctr"), leaf("2", "aes128-ctr")}},
		{Label: "Match", Children: []domain.TreeNode{
			{Label: "Condition", Children: []domain.TreeNode{leaf("User", "carol"), leaf("Address", "10.0.0.*")}},
			{Label: "Settings", Children: []domain.TreeNode{leaf("X11Forwarding", "yes")}},
		}},
	}
	if diff := cmp.Diff(want, nodes); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	out, err := lens.Sshd{}.Put(nodes)
	require.NoError(t, err)
	assert.Equal(t, content, string(out))
}

func TestSshd_PutRejectsMisplacedList(t *testing.T) {
	_, err := lens.Sshd{}.Put([]domain.TreeNode{{Label: "PermitRootLogin", Children: []domain.TreeNode{leaf("1", "no")}}})
	assert.Error(t, err)

	_, err = lens.Sshd{}.Put([]domain.TreeNode{leaf("AllowUsers", "alice")})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := lens.Default()
	assert.Equal(t, []string{"Hosts", "Simplevars", "Sshd"}, r.Names())

	for _, name := range []string{"Hosts", "Hosts.lns", "@Hosts"} {
		l, err := r.Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, "Hosts", l.Name())
	}

	_, err := r.Lookup("Fstab")
	assert.ErrorIs(t, err, lens.ErrUnknownLens)
	assert.EqualError(t, err, "unknown lens: Fstab.lns")

	assert.Equal(t, "Hosts.lns", lens.QualifiedName("Hosts"))
	assert.Equal(t, "Hosts", lens.ModuleName("Hosts.lns"))
}
