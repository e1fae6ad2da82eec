package world

// Shortest-path routing over the directed warp graph, hop count as the
// uniform edge weight. Cross-node targets re-route toward the source node's
// hub port; only a NODE HOP at the hub crosses partitions.

// routeLocked returns the ordered sector path from src to dst inclusive, or
// nil when unreachable. Caller holds w.mu.
func (w *World) routeLocked(src, dst int) []int {
	if src == dst {
		return []int{src}
	}
	srcNode, ok := w.cfg.NodeOf(src)
	if !ok {
		return nil
	}
	dstNode, ok := w.cfg.NodeOf(dst)
	if !ok {
		return nil
	}
	if srcNode.ID != dstNode.ID {
		// Different partition: the best this route can do is reach the
		// local travel hub.
		hub := w.ports[srcNode.HubPort]
		if hub == nil || hub.Sector == src {
			return nil
		}
		dst = hub.Sector
	}

	// Unweighted shortest path: breadth-first over the link lists.
	prev := map[int]int{src: 0}
	frontier := []int{src}
	for len(frontier) > 0 {
		next := frontier[:0:0]
		for _, cur := range frontier {
			s := w.sectors[cur]
			if s == nil {
				continue
			}
			for _, link := range s.Links {
				if link == 0 {
					continue
				}
				if _, seen := prev[link]; seen {
					continue
				}
				prev[link] = cur
				if link == dst {
					return unwind(prev, src, dst)
				}
				next = append(next, link)
			}
		}
		frontier = next
	}
	return nil
}

func unwind(prev map[int]int, src, dst int) []int {
	var rev []int
	for at := dst; at != 0; at = prev[at] {
		rev = append(rev, at)
		if at == src {
			break
		}
	}
	path := make([]int, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}
