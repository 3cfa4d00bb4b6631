/*
Package domain contains the core models of the augtree command language.

It defines the commands an operator can express, the results they produce and
the error taxonomy shared by the parser and the executor. This package is kept
pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Command: a closed union of Set, Remove, Match, LensMatch, Insert, Transform and Load.
  - Sequence: the ordered commands of a block, in execution order.
  - Result / Entry / Report: per-command outcomes and the aggregate changed flag.
  - Errors: parse errors (ErrCommandsParse) and store errors (ErrStore) with diagnostics.
*/
package domain
