package model

import (
	"fmt"
	"time"
)

// Node represents a trackable work item (a PR) in the tech tree
type Node struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status    `json:"status" yaml:"status"`
	DependsOn   []string  `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Group       string    `json:"plan,omitempty" yaml:"plan,omitempty"`
	Branch      string    `json:"branch,omitempty" yaml:"branch,omitempty"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Clone creates a deep copy of the node
func (n Node) Clone() Node {
	clone := n
	if n.DependsOn != nil {
		clone.DependsOn = make([]string, len(n.DependsOn))
		copy(clone.DependsOn, n.DependsOn)
	}
	return clone
}

// IsStandalone reports whether the node belongs to no plan
func (n Node) IsStandalone() bool {
	return n.Group == ""
}

// Validate checks if the node data is logically valid
func (n *Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("node ID cannot be empty")
	}
	if n.Title == "" {
		return fmt.Errorf("node %s: title cannot be empty", n.ID)
	}
	if !n.Status.IsValid() {
		return fmt.Errorf("node %s: invalid status: %s", n.ID, n.Status)
	}
	seen := make(map[string]bool, len(n.DependsOn))
	for _, dep := range n.DependsOn {
		if dep == n.ID {
			return fmt.Errorf("node %s: cannot depend on itself", n.ID)
		}
		if seen[dep] {
			return fmt.Errorf("node %s: duplicate dependency %s", n.ID, dep)
		}
		seen[dep] = true
	}
	return nil
}

// Status represents the current state of a PR
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusMerged     Status = "merged"
	StatusClosed     Status = "closed"
	StatusBlocked    Status = "blocked"
)

// AllStatuses lists every status in display order
var AllStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusInReview,
	StatusBlocked,
	StatusMerged,
	StatusClosed,
}

// IsValid returns true if the status is a recognized value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusInReview, StatusMerged, StatusClosed, StatusBlocked:
		return true
	}
	return false
}

// IsFinished returns true for statuses that no longer need work
func (s Status) IsFinished() bool {
	return s == StatusMerged || s == StatusClosed
}

// IsActive returns true if someone is working on the PR or reviewing it
func (s Status) IsActive() bool {
	return s == StatusInProgress || s == StatusInReview
}

// Label returns the human-readable form of the status
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusInReview:
		return "in review"
	case "":
		return "unknown"
	}
	return string(s)
}

// Group is a named plan. It only affects layout partitioning and labels.
type Group struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// DisplayName returns the name, falling back to the id
func (g Group) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.ID
}

// StandaloneName is the label used for nodes without a plan
const StandaloneName = "Standalone"
