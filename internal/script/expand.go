package script

import "strings"

// expandToolInvocation replaces the standalone token `melos` with the
// host tool's invocation name, split on ` && ` so that `melos run build
// && melos run test` expands both pieces. It never mangles `melos-rs`:
// a match immediately followed by `-rs` is left untouched.
func expandToolInvocation(command, toolName string) []string {
	pieces := strings.Split(command, " && ")
	out := make([]string, len(pieces))
	for i, piece := range pieces {
		out[i] = replaceToolToken(piece, toolName)
	}
	return out
}

func replaceToolToken(piece, toolName string) string {
	var sb strings.Builder
	i := 0
	for i < len(piece) {
		if matchesWord(piece, i, "melos") {
			end := i + len("melos")
			if strings.HasPrefix(piece[end:], "-rs") {
				sb.WriteString("melos")
				i = end
				continue
			}
			sb.WriteString(toolName)
			i = end
			continue
		}
		sb.WriteByte(piece[i])
		i++
	}
	return sb.String()
}

// matchesWord reports whether piece[pos:] begins with word as a
// standalone token (not glued to an adjacent identifier character).
func matchesWord(piece string, pos int, word string) bool {
	if !strings.HasPrefix(piece[pos:], word) {
		return false
	}
	if pos > 0 && isWordByte(piece[pos-1]) {
		return false
	}
	end := pos + len(word)
	if end < len(piece) && isWordByte(piece[end]) {
		return false
	}
	return true
}

// scriptRunTarget reports whether piece is exactly `<tool> run <name>`
// and, if so, returns name.
func scriptRunTarget(piece, toolName string) (name string, ok bool) {
	fields := strings.Fields(piece)
	if len(fields) != 3 || fields[0] != toolName || fields[1] != "run" {
		return "", false
	}
	return fields[2], true
}
