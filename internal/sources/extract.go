package sources

import (
	"context"
	"fmt"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/lib/htmlutil"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

// listLayout is the selector cascade a generic list page is read with.
type listLayout struct {
	jobList []string
	title   []string
	link    []string
	// relative links resolve against the page url instead of its origin
	resolveAgainstPage bool
	// a container that is itself an anchor supplies its own href
	containerHref bool
}

type listPage struct {
	source string
	target Target
	today  string
	layout listLayout
}

func withExperience(title, experience string) string {
	if experience == "" {
		return title
	}
	return fmt.Sprintf("%s - %s", title, experience)
}

func isSelf(selector string) bool {
	return selector == SelfSelector || selector == selfSelectorKo
}

func (l listPage) text(item *goquery.Selection, role string, fallbacks []string) string {
	selector := l.target.Selector(role)
	if isSelf(selector) {
		return htmlutil.Text(item)
	}
	return htmlutil.FirstText(item, selector, fallbacks)
}

func (l listPage) href(item *goquery.Selection) string {
	selector := l.target.Selector(RoleLink)
	own, _ := item.Attr("href")
	isAnchor := htmlutil.IsTag(item, "a")
	if isSelf(selector) {
		if isAnchor {
			return own
		}
		return ""
	}
	if l.layout.containerHref && isAnchor && own != "" {
		return own
	}
	return htmlutil.FirstAttr(item, "href", selector, l.layout.link)
}

func (l listPage) absolute(href string) string {
	if l.layout.resolveAgainstPage {
		return htmlutil.JoinReference(l.target.URL, href)
	}
	return htmlutil.JoinOrigin(l.target.URL, href)
}

func (l listPage) item(item *goquery.Selection) (posting.Posting, error) {
	title := l.text(item, RoleTitle, l.layout.title)
	if title == "" {
		return posting.Posting{}, ErrMissingTitle
	}

	location := htmlutil.FirstText(item, l.target.Selector(RoleLocation), nil)
	experience := htmlutil.FirstText(item, l.target.Selector(RoleExperience), nil)

	return posting.New(posting.Fields{
		Source:    l.source,
		Company:   l.target.Name,
		Title:     withExperience(title, experience),
		Location:  location,
		URL:       l.absolute(l.href(item)),
		DateFound: l.today,
	}), nil
}

// extract reads every job container of `doc`, an item that cannot be read
// is skipped without affecting the rest of the page.
func (l listPage) extract(ctx context.Context, doc *goquery.Selection) []posting.Posting {
	items, selector := htmlutil.Resolve(doc, l.target.Selector(RoleJobList), l.layout.jobList)
	if items.Length() == 0 {
		slog.WarnContext(
			ctx, "no job items found, check selectors.job_list",
			"source", l.source,
			"company", l.target.Name,
			"url", l.target.URL,
		)
		return []posting.Posting{}
	}
	slog.DebugContext(
		ctx, "resolved job list",
		"source", l.source,
		"company", l.target.Name,
		"selector", selector,
		"items", items.Length(),
	)

	out := []posting.Posting{}
	items.Each(func(i int, item *goquery.Selection) {
		p, err := l.item(item)
		if err != nil {
			slog.DebugContext(
				ctx, "skipping job item",
				"source", l.source,
				"company", l.target.Name,
				"index", i,
				"err", err,
			)
			return
		}
		out = append(out, p)
	})
	return out
}
