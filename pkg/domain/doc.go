/*
Package domain contains the types shared by the solver session and its
adapters.

It is kept free of I/O. The session produces these values; the HTTP, MCP and
CLI surfaces only render them.

# Key Entities

  - TreeInfo: facts about the loaded tree (board, pot, effective stack).
  - NodeInfo: one node of the loaded tree as reported by show_node.
  - SessionHooks: callbacks observing commands, state changes and cache lookups.

Failures are typed so callers can branch with errors.As; see errors.go.
*/
package domain
