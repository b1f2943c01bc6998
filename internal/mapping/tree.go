package mapping

import (
	"sort"
	"time"
)

// Node is one vertex of the cluster -> topics -> groups hierarchy
type Node struct {
	Name     string  `json:"name"`
	Parent   string  `json:"parent,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Tree builds the hierarchy rooted at the cluster. Topics are ordered by
// name; groups keep their first-seen order.
func (s Snapshot) Tree(clusterName string) *Node {
	root := &Node{
		Name:     clusterName,
		Children: make([]*Node, 0, len(s.Topics)),
	}

	for _, topic := range s.TopicNames() {
		groups := s.Topics[topic]
		topicNode := &Node{
			Name:     topic,
			Parent:   clusterName,
			Children: make([]*Node, 0, len(groups)),
		}
		for _, group := range groups {
			topicNode.Children = append(topicNode.Children, &Node{Name: group, Parent: topic})
		}
		root.Children = append(root.Children, topicNode)
	}

	return root
}

// TopicNames returns the topics in lexical order
func (s Snapshot) TopicNames() []string {
	names := make([]string, 0, len(s.Topics))
	for topic := range s.Topics {
		names = append(names, topic)
	}
	sort.Strings(names)
	return names
}

// LastUpdatedTime converts LastUpdated to a time. The zero time is returned
// until the first record has been observed.
func (s Snapshot) LastUpdatedTime() time.Time {
	if s.LastUpdated == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.LastUpdated)
}
