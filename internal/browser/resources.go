package browser

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockList maps configuration names onto CDP resource types.
type blockList map[proto.NetworkResourceType]bool

var blockNames = map[string]proto.NetworkResourceType{
	"images":      proto.NetworkResourceTypeImage,
	"fonts":       proto.NetworkResourceTypeFont,
	"media":       proto.NetworkResourceTypeMedia,
	"stylesheets": proto.NetworkResourceTypeStylesheet,
	"scripts":     proto.NetworkResourceTypeScript,
}

func newBlockList(names []string) (blockList, error) {
	bl := make(blockList, len(names))
	for _, n := range names {
		rt, ok := blockNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("browser: unknown resource type %q", n)
		}
		bl[rt] = true
	}
	return bl, nil
}

func (bl blockList) blocks(rt proto.NetworkResourceType) bool {
	return bl[rt]
}

// applyResourceBlocking intercepts requests and fails the blocked types.
// Blocking images still lets placeholders swap in their tags; only the
// bytes are never fetched.
func applyResourceBlocking(page *rod.Page, names []string) error {
	bl, err := newBlockList(names)
	if err != nil {
		return err
	}

	router := page.HijackRequests()
	err = router.Add("*", "", func(h *rod.Hijack) {
		if bl.blocks(h.Request.Type()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return fmt.Errorf("browser: hijack: %w", err)
	}

	go router.Run()
	return nil
}
