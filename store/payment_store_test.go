package store

import "testing"

func TestPageWindow(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{1, 20, 1, 20},
		{0, 0, 1, 20},
		{-3, -1, 1, 20},
		{2, 100, 2, 100},
		{1, 150, 1, 100}, // oversized limit clamps, not resets
		{1, 1, 1, 1},
	}

	for _, tc := range cases {
		page, limit := pageWindow(tc.page, tc.limit)
		if page != tc.wantPage || limit != tc.wantLimit {
			t.Errorf("pageWindow(%d, %d) = (%d, %d), want (%d, %d)",
				tc.page, tc.limit, page, limit, tc.wantPage, tc.wantLimit)
		}
	}
}
