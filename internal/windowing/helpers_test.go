package windowing_test

import "github.com/petasbytes/go-astra/memory"

// U builds a user turn.
func U(text string) memory.Turn {
	return memory.Turn{Role: memory.RoleUser, Text: text}
}

// A builds an agent turn.
func A(text string) memory.Turn {
	return memory.Turn{Role: memory.RoleAgent, Text: text}
}

// exchange builds n alternating user/agent turns u0,a0,u1,a1,...
func exchange(n int) []memory.Turn {
	out := make([]memory.Turn, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, U(string(rune('a'+i))), A(string(rune('A'+i))))
	}
	return out
}
