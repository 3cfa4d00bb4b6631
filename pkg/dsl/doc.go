/*
Package dsl provides a Go DSL for building command sequences programmatically.

It is an alternative to writing command blocks as text: values never need
quoting, and every command is validated by the same schema the parser uses.

Example usage:

	seq, err := dsl.New().
		Transform("Hosts", "/etc/hosts").
		Load().
		Set("/files/etc/hosts/01/ipaddr", "192.168.0.1").
		Set("/files/etc/hosts/01/canonical", "pigiron.example.com").
		InsertAfter("alias", "/files/etc/hosts/01/canonical").
		Set("/files/etc/hosts/01/alias", "pigiron").
		Build()
	if err != nil {
		return err
	}
	report, err := engine.Execute(ctx, store, seq)
*/
package dsl
