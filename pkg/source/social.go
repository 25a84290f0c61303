package source

import (
	"context"
	"strings"
)

// Social serves a fixed set of posts standing in for a social media
// integration. Pagination windows over the fixture list; search matches
// title and description case-insensitively.
type Social struct {
	posts []Item
}

// NewSocial creates the mock social provider.
func NewSocial() *Social {
	return &Social{posts: socialPosts}
}

func (s *Social) Name() SourceType { return SourceSocial }

func (s *Social) FetchDefault(_ context.Context, page, pageSize int) ([]Item, error) {
	start := (page - 1) * pageSize
	if start >= len(s.posts) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(s.posts) {
		end = len(s.posts)
	}

	items := make([]Item, end-start)
	copy(items, s.posts[start:end])
	return items, nil
}

func (s *Social) Search(_ context.Context, query string, _, _ int) ([]Item, error) {
	q := strings.ToLower(query)

	var items []Item
	for _, post := range s.posts {
		if strings.Contains(strings.ToLower(post.Title), q) ||
			strings.Contains(strings.ToLower(post.Description), q) {
			items = append(items, post)
		}
	}
	return items, nil
}

var socialPosts = []Item{
	{
		ID:          "social-1",
		Type:        TypeSocial,
		Title:       "Post from @reactjs",
		Description: "Exploring the new `use` hook in React. How are you using it in your projects? Share your thoughts! #react #hooks",
		ImageURL:    "https://placehold.co/600x400.png",
		ImageHint:   "react logo",
		Source:      "X (formerly Twitter)",
		URL:         "#",
	},
	{
		ID:          "social-2",
		Type:        TypeSocial,
		Title:       "Post from @tailwindcss",
		Description: "Just released Tailwind CSS v4.0 with a lightning fast new engine, unified toolchain, and CSS for JS. #css #webdev",
		ImageURL:    "https://placehold.co/600x400.png",
		ImageHint:   "code editor",
		Source:      "X (formerly Twitter)",
		URL:         "#",
	},
	{
		ID:          "social-3",
		Type:        TypeSocial,
		Title:       "Photo by @nasa",
		Description: "A stunning new image of the Pillars of Creation from the James Webb Space Telescope. #space #astronomy #jwst",
		ImageURL:    "https://placehold.co/600x400.png",
		ImageHint:   "galaxy stars",
		Source:      "Instagram",
		URL:         "#",
	},
	{
		ID:          "social-4",
		Type:        TypeSocial,
		Title:       "Post from @spotify",
		Description: "Check out the new \"Lo-fi Beats\" playlist, perfect for focusing or just chilling out. #lofi #focus #music",
		ImageURL:    "https://placehold.co/600x400.png",
		ImageHint:   "headphones music",
		Source:      "Community",
		URL:         "#",
	},
	{
		ID:          "social-5",
		Type:        TypeSocial,
		Title:       "Photo by @natgeotravel",
		Description: "Sunrise over the ancient temples of Bagan, Myanmar. A truly magical experience. #travel #myanmar #sunrise",
		ImageURL:    "https://placehold.co/600x400.png",
		ImageHint:   "temples sunrise",
		Source:      "Instagram",
		URL:         "#",
	},
	{
		ID:          "social-6",
		Type:        TypeSocial,
		Title:       "Post from @nextjs",
		Description: "The Next.js App Router is now stable! Learn about Server Components, Layouts, and more. #nextjs #webdevelopment",
		ImageURL:    "https://placehold.co/600x400.png",
		ImageHint:   "nextjs logo",
		Source:      "X (formerly Twitter)",
		URL:         "#",
	},
	{
		ID:          "social-7",
		Type:        TypeSocial,
		Title:       "Design tip by @figma",
		Description: "Use auto-layout to create responsive components that adapt to their content. It will save you hours! #designtips #figma #uiux",
		ImageURL:    "https://placehold.co/600x400.png",
		ImageHint:   "design abstract",
		Source:      "Community",
		URL:         "#",
	},
	{
		ID:          "social-8",
		Type:        TypeSocial,
		Title:       "Post from @github",
		Description: "GitHub Copilot now has chat functionality directly in your editor. Ask questions, get code suggestions, and more. #ai #coding #github",
		ImageURL:    "https://placehold.co/600x400.png",
		ImageHint:   "code robot",
		Source:      "X (formerly Twitter)",
		URL:         "#",
	},
}
