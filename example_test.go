package augtree_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/augtree"
	"github.com/aretw0/augtree/pkg/adapters/memory"
	"github.com/aretw0/augtree/pkg/ports"
)

// ExampleEngine_Run runs a block against an in-memory tree that no file backs.
func ExampleEngine_Run() {
	snapshots := memory.NewSnapshotStore()
	open := func(ctx context.Context, opts ports.OpenOptions) (ports.TreeStore, error) {
		return memory.Open(memory.WithSnapshotBackend(snapshots))
	}

	eng, err := augtree.New(open)
	if err != nil {
		log.Fatal(err)
	}

	block := `
set /files/etc/hosts/01/ipaddr 192.168.0.1
set /files/etc/hosts/01/canonical pigiron.example.com
match /files/etc/hosts/01/*
`
	for i := 0; i < 2; i++ {
		report, err := eng.Run(context.Background(), block)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("changed:", report.Changed)
	}

	report, err := eng.Run(context.Background(), "match /files/etc/hosts/01/*")
	if err != nil {
		log.Fatal(err)
	}
	for _, m := range report.Entries[0].Result.Matches {
		fmt.Printf("%s = %s\n", m.Label, *m.Value)
	}

	// Output:
	// changed: true
	// changed: false
	// /files/etc/hosts/01/ipaddr = 192.168.0.1
	// /files/etc/hosts/01/canonical = pigiron.example.com
}

// ExampleParse shows how values are quoted.
func ExampleParse() {
	seq, err := augtree.Parse(`set /files/etc/motd/text "hello world" rm '/files/etc/hosts/*[canonical="old"]'`)
	if err != nil {
		log.Fatal(err)
	}
	for _, cmd := range seq {
		fmt.Printf("%s %q\n", cmd.Name(), cmd.Args()[0].Value)
	}

	// Output:
	// set "/files/etc/motd/text"
	// rm "/files/etc/hosts/*[canonical=\"old\"]"
}
