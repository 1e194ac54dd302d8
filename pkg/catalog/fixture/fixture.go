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

// Package fixture provides an in-memory catalog.Client double for driving
// the orchestrator's own tests without a live Oracle connection, grounded
// on the teacher's blackhole_reader.go / blackhole_writer.go no-op-double
// idiom.
package fixture

import (
	"context"
	"sort"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
)

// Client is a scriptable catalog.Client: tests populate its fields
// directly, then hand it to the orchestrator.
type Client struct {
	BootstrapInfo   catalog.BootstrapInfo
	OnlineSequence  uint32
	ContainerIDVal  uint32
	OnlineMembers   []catalog.LogfileMember
	ArchivedLogs    []catalog.Descriptor
	Objects         []catalog.Object
	BootstrapErr    error
	ArchivedLogsErr error
	Closed          bool
}

// New returns an empty fixture Client.
func New() *Client { return &Client{} }

// Bootstrap implements catalog.Client.
func (c *Client) Bootstrap(ctx context.Context) (catalog.BootstrapInfo, error) {
	if c.BootstrapErr != nil {
		return catalog.BootstrapInfo{}, c.BootstrapErr
	}
	return c.BootstrapInfo, nil
}

// CurrentOnlineSequence implements catalog.Client.
func (c *Client) CurrentOnlineSequence(ctx context.Context) (uint32, error) {
	return c.OnlineSequence, nil
}

// ContainerID implements catalog.Client.
func (c *Client) ContainerID(ctx context.Context, versionBanner string) (uint32, error) {
	return c.ContainerIDVal, nil
}

// ListOnlineLogfiles implements catalog.Client.
func (c *Client) ListOnlineLogfiles(ctx context.Context) ([]catalog.LogfileMember, error) {
	return c.OnlineMembers, nil
}

// ListArchivedLogs implements catalog.Client, keeping the scripted
// ArchivedLogs with sequence >= floor, ordered by sequence. The resetlogs
// argument is ignored: catalog.Descriptor carries no resetlogs id.
func (c *Client) ListArchivedLogs(ctx context.Context, floor uint32, resetlogs uint32) ([]catalog.Descriptor, error) {
	if c.ArchivedLogsErr != nil {
		return nil, c.ArchivedLogsErr
	}
	var out []catalog.Descriptor
	for _, d := range c.ArchivedLogs {
		if d.Sequence >= floor {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

// ListObjects implements catalog.Client.
func (c *Client) ListObjects(ctx context.Context, mask string) ([]catalog.Object, error) {
	return c.Objects, nil
}

// Close implements catalog.Client.
func (c *Client) Close() error {
	c.Closed = true
	return nil
}
