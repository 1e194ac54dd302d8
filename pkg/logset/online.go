// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logset holds the in-memory descriptor registries the
// orchestrator searches each cycle: the online log set (one descriptor
// per group) and the archived log priority queue (ordered by sequence).
package logset

import (
	"context"
	"os"
	"sort"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
	cerror "github.com/philipgreat/OpenLogReplicator/pkg/errors"
)

// HeaderReader re-reads a descriptor's on-disk header, returning its
// current sequence. Online groups are recycled by the database, so a
// descriptor's sequence can change between refresh cycles; archived
// descriptors never change once listed. This is supplied by the external
// log-reader collaborator (pkg/logreader); logset only calls it.
type HeaderReader func(ctx context.Context, path string) (sequence uint32, err error)

// OnlineSet is the set of online log descriptors, one per group, built
// once at startup and refreshed every cycle via Reload.
type OnlineSet struct {
	byGroup map[int64]*catalog.Descriptor
	reader  HeaderReader
}

// NewOnlineSet builds the online set from the catalog's logfile
// membership rows: within a group, the first row whose path stats
// successfully wins; the rest are discarded. A group with no readable
// member fails startup, matching the original onlineLogGetList.
func NewOnlineSet(members []catalog.LogfileMember, reader HeaderReader) (*OnlineSet, error) {
	set := &OnlineSet{byGroup: make(map[int64]*catalog.Descriptor), reader: reader}

	groups := groupOrder(members)
	byGroupRows := make(map[int64][]catalog.LogfileMember, len(groups))
	for _, m := range members {
		byGroupRows[m.Group] = append(byGroupRows[m.Group], m)
	}

	for _, group := range groups {
		var found *catalog.Descriptor
		for _, m := range byGroupRows[group] {
			if _, err := os.Stat(m.MemberPath); err == nil {
				found = &catalog.Descriptor{Path: m.MemberPath, Group: group}
				break
			}
		}
		if found == nil {
			return nil, cerror.ErrNoReadableMember.GenWithStackByArgs(group)
		}
		set.byGroup[group] = found
	}
	return set, nil
}

// groupOrder returns the distinct group ids in ascending order.
func groupOrder(members []catalog.LogfileMember) []int64 {
	seen := make(map[int64]bool)
	var order []int64
	for _, m := range members {
		if !seen[m.Group] {
			seen[m.Group] = true
			order = append(order, m.Group)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return order
}

// Reload re-reads every descriptor's header, letting sequence numbers
// that changed because the database recycled a group show up on the
// next Find call.
func (s *OnlineSet) Reload(ctx context.Context) error {
	for _, d := range s.byGroup {
		seq, err := s.reader(ctx, d.Path)
		if err != nil {
			return cerror.WrapError(cerror.ErrCatalogUnavailable, err)
		}
		d.Sequence = seq
	}
	return nil
}

// Find returns the descriptor whose current sequence equals want, and
// reports whether any descriptor currently has a strictly higher
// sequence (used by the orchestrator to decide whether to keep waiting
// or fall through to the archive phase).
func (s *OnlineSet) Find(want uint32) (d catalog.Descriptor, found bool, higherExists bool) {
	for _, desc := range s.byGroup {
		if desc.Sequence == want {
			d, found = *desc, true
		}
		if desc.Sequence > want {
			higherExists = true
		}
	}
	return d, found, higherExists
}

// Len reports the number of online groups.
func (s *OnlineSet) Len() int { return len(s.byGroup) }
