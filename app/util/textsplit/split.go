package textsplit

import "strings"

// DefaultMaxLength keeps chunks well below the chat platform's message limit.
const DefaultMaxLength = 2800

// Split breaks a long message into chunks on newline boundaries so that no
// chunk exceeds maxLen. A message already within the limit is returned as a
// single chunk, an empty message produces no chunks, and whitespace-only
// chunks are dropped. Lines that cannot fit within maxLen together with
// their newline are hard-split.
func Split(message string, maxLen int) []string {
	if message == "" {
		return nil
	}

	if len(message) <= maxLen {
		return []string{message}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			chunks = append(chunks, current.String())
		}
		current.Reset()
	}

	for _, line := range strings.Split(message, "\n") {
		for len(line)+1 > maxLen {
			flush()
			chunks = append(chunks, line[:maxLen])
			line = line[maxLen:]
		}

		if current.Len()+len(line)+1 > maxLen {
			flush()
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	flush()

	return chunks
}
