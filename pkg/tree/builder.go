package tree

import (
	"fmt"
	"sort"
	"strings"
)

// Node is one entry of a track log tree
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Children []Node
}

// Builder arranges slash-separated track log paths into a tree
type Builder struct{}

// NewBuilder creates a new tree builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build creates a hierarchical tree from slash-separated paths
func (b *Builder) Build(paths []string) []Node {
	root := &Node{IsDir: true}

	for _, path := range paths {
		path = strings.Trim(path, "/")
		if path == "" {
			continue
		}
		b.add(root, path)
	}

	b.sort(root)
	return root.Children
}

func (b *Builder) add(root *Node, path string) {
	parts := strings.Split(path, "/")
	current := root

	for i, part := range parts {
		isLast := i == len(parts)-1

		var found *Node
		for j := range current.Children {
			if current.Children[j].Name == part {
				found = &current.Children[j]
				break
			}
		}

		if found == nil {
			current.Children = append(current.Children, Node{
				Name:  part,
				Path:  strings.Join(parts[:i+1], "/"),
				IsDir: !isLast,
			})
			found = &current.Children[len(current.Children)-1]
		} else if !isLast {
			found.IsDir = true
		}

		current = found
	}
}

// sort orders directories first, then files, both alphabetically
func (b *Builder) sort(node *Node) {
	sort.Slice(node.Children, func(i, j int) bool {
		a, c := &node.Children[i], &node.Children[j]
		if a.IsDir != c.IsDir {
			return a.IsDir
		}
		return a.Name < c.Name
	})

	for i := range node.Children {
		b.sort(&node.Children[i])
	}
}

// Render writes the tree in Unix tree format
func (b *Builder) Render(nodes []Node) string {
	var sb strings.Builder
	sb.WriteString(".\n")
	b.render(&sb, nodes, "")

	dirs, files := b.count(nodes)
	sb.WriteString(fmt.Sprintf("\n%d directories, %d files\n", dirs, files))

	return sb.String()
}

func (b *Builder) render(sb *strings.Builder, nodes []Node, prefix string) {
	for i, node := range nodes {
		current, next := prefix+"├── ", prefix+"│   "
		if i == len(nodes)-1 {
			current, next = prefix+"└── ", prefix+"    "
		}

		sb.WriteString(current + node.Name + "\n")
		if node.IsDir {
			b.render(sb, node.Children, next)
		}
	}
}

func (b *Builder) count(nodes []Node) (dirs, files int) {
	for _, node := range nodes {
		if !node.IsDir {
			files++
			continue
		}
		dirs++
		childDirs, childFiles := b.count(node.Children)
		dirs += childDirs
		files += childFiles
	}
	return dirs, files
}
