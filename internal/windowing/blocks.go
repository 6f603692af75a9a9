package windowing

import (
	"fmt"
	"os"

	"github.com/petasbytes/go-astra/memory"
)

// GroupKind denotes the atomic unit type when walking a conversation in pairs.
type GroupKind int

const (
	// GroupPair is a user turn immediately followed by an agent turn.
	GroupPair GroupKind = iota
	// GroupMismatched is two adjacent turns whose roles are not user then agent.
	GroupMismatched
	// GroupDangling is a trailing turn with no partner.
	GroupDangling
)

func (k GroupKind) String() string {
	switch k {
	case GroupPair:
		return "pair"
	case GroupMismatched:
		return "mismatched"
	case GroupDangling:
		return "dangling"
	default:
		return fmt.Sprintf("GroupKind(%d)", int(k))
	}
}

// Group describes a contiguous span of turns [Start, End) in the original slice.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into turns
	End   int // exclusive index into turns
}

// GroupTurns walks turns with a stride of two, starting at index 0.
// Invariants:
// - Every group but a trailing dangling one spans exactly two turns.
// - A pair requires roles user then agent, in that order.
// - Groups are contiguous and cover every turn.
func GroupTurns(turns []memory.Turn) []Group {
	groups := make([]Group, 0, (len(turns)+1)/2)
	for i := 0; i < len(turns); i += 2 {
		if i+1 >= len(turns) {
			vlogf("exclude turn: reason=dangling idx=%d", i)
			groups = append(groups, Group{Kind: GroupDangling, Start: i, End: i + 1})
			break
		}
		if turns[i].Role == memory.RoleUser && turns[i+1].Role == memory.RoleAgent {
			groups = append(groups, Group{Kind: GroupPair, Start: i, End: i + 2})
			continue
		}
		vlogf("exclude pair: reason=role_order idx=%d roles=%s,%s", i, turns[i].Role, turns[i+1].Role)
		groups = append(groups, Group{Kind: GroupMismatched, Start: i, End: i + 2})
	}
	return groups
}

// minimal verbose logging when ASTRA_VERBOSE_WINDOW_LOGS=1
var verbose = os.Getenv("ASTRA_VERBOSE_WINDOW_LOGS") == "1"

func vlogf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[windowing] "+format+"\n", args...)
	}
}
