package services

import (
	"sort"

	"github.com/haidershah700/china-pakistan-connect/config"
)

type ChatSection string

const (
	SectionHeader    ChatSection = "header"
	SectionHero      ChatSection = "hero"
	SectionContact   ChatSection = "contact"
	SectionFooter    ChatSection = "footer"
	SectionQuotation ChatSection = "quotation"
)

var sectionGreetings = map[ChatSection]string{
	SectionHeader:  "Hello! I'm interested in your product sourcing service from China to Pakistan.",
	SectionHero:    "Hello! I want to get a quotation for products from China to Pakistan.",
	SectionContact: "Hello! I have questions about your sourcing service from China to Pakistan.",
	SectionFooter:  "Hello! I'm interested in your China sourcing services.",
	// The quotation desk gets the full form message instead.
	SectionQuotation: "",
}

type ChatLink struct {
	Section ChatSection `json:"section"`
	Phone   string      `json:"phone"`
	Message string      `json:"message,omitempty"`
	URL     string      `json:"url"`
}

// ChatLinks holds the static click-to-chat buttons shown around the site.
type ChatLinks struct {
	links map[ChatSection]ChatLink
}

func NewChatLinks(cfg config.ChatConfig) *ChatLinks {
	numbers := map[ChatSection]string{
		SectionHeader:    cfg.HeaderNumber,
		SectionHero:      cfg.HeroNumber,
		SectionContact:   cfg.ContactNumber,
		SectionFooter:    cfg.FooterNumber,
		SectionQuotation: cfg.QuotationNumber,
	}

	links := make(map[ChatSection]ChatLink, len(numbers))
	for section, phone := range numbers {
		msg := sectionGreetings[section]
		links[section] = ChatLink{
			Section: section,
			Phone:   phone,
			Message: msg,
			URL:     DeepLink(cfg.BaseURL, phone, msg),
		}
	}
	return &ChatLinks{links: links}
}

func (l *ChatLinks) Get(section string) (ChatLink, bool) {
	link, ok := l.links[ChatSection(section)]
	return link, ok
}

// All returns the links sorted by section name.
func (l *ChatLinks) All() []ChatLink {
	out := make([]ChatLink, 0, len(l.links))
	for _, link := range l.links {
		out = append(out, link)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Section < out[j].Section })
	return out
}
