package auth

import (
	"fmt"
	"io"
	"strings"
)

// WriteAPIKeyGuide explains where the API key and secret come from
func WriteAPIKeyGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TWITTER API CREDENTIALS")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "twtimg uses app-only authentication. It needs the API key and API")
	fmt.Fprintln(w, "secret (sometimes called consumer key and consumer secret) of an app")
	fmt.Fprintln(w, "registered on the Twitter developer portal.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Sign in at https://developer.twitter.com and open your project")
	fmt.Fprintln(w, "  2. Select the app and go to \"Keys and tokens\"")
	fmt.Fprintln(w, "  3. Under \"Consumer Keys\" copy the API Key and API Key Secret")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The pair can also be supplied without storing it:")
	fmt.Fprintln(w, "  - a JSON file passed with -c: {\"api_key\": \"...\", \"api_secret\": \"...\"}")
	fmt.Fprintln(w, "  - TWTIMG_API_KEY and TWTIMG_API_SECRET in the environment or a .env file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}
