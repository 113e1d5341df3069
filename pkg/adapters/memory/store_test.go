package memory_test

import (
	"testing"

	"github.com/aretw0/pious/pkg/adapters/memory"
	"github.com/aretw0/pious/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunTreeInfoStoreContract(t, store)
}
