package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMemberURL(t *testing.T) {
	tests := []struct {
		name   string
		jobURL string
		member Member
		want   string
		ok     bool
	}{
		{
			name:   "explicit url wins",
			jobURL: "https://www.youtube.com/playlist?list=PL1",
			member: Member{Id: "abc", URL: "https://example.com/video"},
			want:   "https://example.com/video",
			ok:     true,
		},
		{
			name:   "webpage url fallback",
			jobURL: "https://example.com/playlist",
			member: Member{Id: "abc", WebpageURL: "https://example.com/watch/abc"},
			want:   "https://example.com/watch/abc",
			ok:     true,
		},
		{
			name:   "id that already is a url",
			jobURL: "https://example.com/playlist",
			member: Member{Id: "https://example.com/watch/abc"},
			want:   "https://example.com/watch/abc",
			ok:     true,
		},
		{
			name:   "bare id on a known domain",
			jobURL: "https://www.youtube.com/playlist?list=PL1",
			member: Member{Id: "abc123"},
			want:   "https://www.youtube.com/watch?v=abc123",
			ok:     true,
		},
		{
			name:   "bare id on a short-link domain",
			jobURL: "https://youtu.be/xyz",
			member: Member{Id: "abc123"},
			want:   "https://www.youtube.com/watch?v=abc123",
			ok:     true,
		},
		{
			name:   "bare id on a subdomain",
			jobURL: "https://music.youtube.com/playlist?list=PL1",
			member: Member{Id: "abc123"},
			want:   "https://www.youtube.com/watch?v=abc123",
			ok:     true,
		},
		{
			name:   "relative url treated as id",
			jobURL: "https://www.youtube.com/playlist?list=PL1",
			member: Member{URL: "abc123"},
			want:   "https://www.youtube.com/watch?v=abc123",
			ok:     true,
		},
		{
			name:   "bare id on an unknown domain",
			jobURL: "https://example.com/playlist",
			member: Member{Id: "abc123"},
			ok:     false,
		},
		{
			name:   "nothing to resolve",
			jobURL: "https://www.youtube.com/playlist?list=PL1",
			member: Member{},
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveMemberURL(tt.jobURL, tt.member)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
