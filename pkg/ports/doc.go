/*
Package ports defines the interfaces the session depends on but does not
implement.

Adapters live under pkg/adapters. Every TreeInfoStore implementation should
pass RunTreeInfoStoreContract.
*/
package ports
