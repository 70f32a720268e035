package memory_test

import (
	"testing"

	"github.com/goodcast/goodapi/pkg/adapters/memory"
	"github.com/goodcast/goodapi/pkg/ports"
)

func TestMemoryStore_PollContract(t *testing.T) {
	ports.RunPollStoreContract(t, memory.NewStore())
}

func TestMemoryStore_PreferenceContract(t *testing.T) {
	ports.RunPreferenceStoreContract(t, memory.NewStore())
}

func TestRecentEvents_Contract(t *testing.T) {
	ports.RunRecentEventsContract(t, memory.NewRecentEvents(5), 5)
}

func TestClaims_Contract(t *testing.T) {
	ports.RunClaimerContract(t, memory.NewClaims())
}
