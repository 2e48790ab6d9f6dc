package sniper

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/dontaybee-cyber/dbai-sale-swarm/internal/profile"
)

// Phrase pools for spintax-style body variation. Each send draws one entry
// from each pool so no two emails read identically.
var (
	greetings = []string{"Hi there,", "Hello,", "Hey,", "Greetings,"}
	openers   = []string{
		"I was just taking a look at your site",
		"I came across your website",
		"I was reviewing your online presence",
		"My team was just looking at your site",
	}
	transitions = []string{
		"and I noticed a quick win.",
		"and wanted to share an observation.",
		"and spotted a massive area for optimization.",
		"and wanted to drop a quick note.",
	}
	signOffs = []string{"Best,", "Cheers,", "Regards,", "Talk soon,"}
)

// Sender identifies who the outreach is from.
type Sender struct {
	Name  string
	Phone string
}

// Subject renders the outreach subject line for a site URL.
func Subject(url string) string {
	return "A specific idea for " + hostOf(url)
}

// Body renders a randomized outreach body around the pain-point summary.
func Body(url, painPoint string, p profile.Profile, sender Sender) string {
	return fmt.Sprintf(`%s

%s at %s %s

%s

I've attached a custom strategic briefing (sample_audit.pdf) showing exactly how %s can plug this leak.

Let's chat: %s
Trust link: %s

%s
%s
`,
		pick(greetings),
		pick(openers), url, pick(transitions),
		painPoint,
		p.CompanyName,
		sender.Phone,
		p.TrustLink,
		pick(signOffs),
		sender.Name,
	)
}

// FollowUpSubject renders the follow-up subject for a site URL.
func FollowUpSubject(url string) string {
	return fmt.Sprintf("Re: Question about %s's lead flow", hostOf(url))
}

// FollowUpBody renders the polite nudge sent when a prospect has not replied.
func FollowUpBody(url string, sender Sender) string {
	return fmt.Sprintf(`Hi again,

I know things get buried in the inbox, so I just wanted to float this to the top.

Did you get a chance to look at the AI audit I sent over for %s?

I'm confident that fixing that leak we identified will have an immediate impact on your conversion rates.

Let me know if you'd like me to resend the link.

Best,
%s
`,
		hostOf(url),
		sender.Name,
	)
}

func pick(pool []string) string {
	return pool[rand.Intn(len(pool))]
}

// hostOf strips the scheme and path from a URL, leaving the bare host.
func hostOf(url string) string {
	host := strings.TrimPrefix(url, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return host
}
