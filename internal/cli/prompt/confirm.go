package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Question is the confirmation shown before any work starts.
const Question = "- Do you wish to continue? [Y/n]"

// Confirm asks question until the answer is yes or no. An empty answer means
// yes. Input ending without an answer means no.
func Confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, question+" ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return false, scanner.Err()
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(out, "Please answer yes or no")
		}
	}
}
