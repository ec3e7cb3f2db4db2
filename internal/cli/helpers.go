package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pcahill/strum/internal/api"
	"github.com/pcahill/strum/internal/core"
)

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index: %s", s)
	}
	return n, nil
}

// resolveTrackArg turns a positional argument into a track: URLs resolve
// through the info endpoint, anything else takes the top search hit.
func resolveTrackArg(ctx context.Context, client *api.Client, arg string) (*core.Track, error) {
	if isMediaURL(arg) {
		info, err := client.Info(ctx, arg)
		if err != nil {
			return nil, err
		}
		return &info.Track, nil
	}

	tracks, err := client.Search(ctx, arg)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no results found for '%s'", arg)
	}
	return &tracks[0], nil
}
