// Package augtree runs small command blocks against a hierarchical,
// path-addressable configuration tree in the style of Augeas.
//
// A block is a list of commands separated by whitespace, quoted the way a
// shell quotes words:
//
//	set /files/etc/hosts/01/ipaddr 192.168.0.1
//	set /files/etc/hosts/01/canonical pigiron.example.com
//	rm /files/etc/hosts/*[canonical="old.example.com"]
//	ins alias after /files/etc/hosts/01/canonical
//	match /files/etc/hosts/*/ipaddr
//
// The commands are set, rm, match, lensmatch, ins, transform and load. A block
// is parsed completely before anything runs; a malformed block runs nothing.
// Commands then execute in order against one store handle, and the store is
// saved once at the end. The first failing command aborts the run before the
// save.
//
// # Usage
//
//	open := func(ctx context.Context, opts ports.OpenOptions) (ports.TreeStore, error) {
//		return memory.Open(memory.WithRoot("/"), memory.WithTransform("Hosts", "/etc/hosts", false))
//	}
//
//	eng, err := augtree.New(open)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := eng.Run(ctx, `set /files/etc/hosts/01/ipaddr 192.168.0.1`)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(report.Changed)
//
// Every Report carries one entry per command: the command text and its result
// (nil for transform and load, a bool for set, rm and ins, the matched nodes
// for match and lensmatch), plus the aggregate changed flag.
//
// # Hosts
//
// Automation frameworks pass an argument dictionary instead of a block; see
// package host, or Engine.Host for a host bound to an engine.
package augtree
