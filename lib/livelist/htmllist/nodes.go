// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package htmllist

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func getAttr(node *html.Node, key string) (string, bool) {
	for _, attribute := range node.Attr {
		if attribute.Namespace == "" && attribute.Key == key {
			return attribute.Val, true
		}
	}
	return "", false
}

func setAttr(node *html.Node, key, value string) {
	for index := range node.Attr {
		if node.Attr[index].Namespace == "" && node.Attr[index].Key == key {
			node.Attr[index].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(node *html.Node, key string) {
	for index := range node.Attr {
		if node.Attr[index].Namespace == "" && node.Attr[index].Key == key {
			node.Attr = append(node.Attr[:index], node.Attr[index+1:]...)
			return
		}
	}
}

func element(tag atom.Atom, attributes ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String(), Attr: attributes}
}

func text(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

func elementChildren(node *html.Node) []*html.Node {
	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			children = append(children, child)
		}
	}
	return children
}

func hasElementChild(node *html.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			return true
		}
	}
	return false
}

// isAncestor reports whether ancestor contains node (or is node).
func isAncestor(ancestor, node *html.Node) bool {
	for current := node; current != nil; current = current.Parent {
		if current == ancestor {
			return true
		}
	}
	return false
}

// childOf returns the ancestor of node (or node itself) whose parent is
// container, or nil if node is not inside container.
func childOf(container, node *html.Node) *html.Node {
	for current := node; current != nil; current = current.Parent {
		if current.Parent == container {
			return current
		}
	}
	return nil
}

func detach(node *html.Node) {
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}

func textContent(node *html.Node) string {
	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(current *html.Node) {
		if current.Type == html.TextNode {
			builder.WriteString(current.Data)
		}
		for child := current.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return builder.String()
}

// replaceLinkText swaps current for label inside link. It prefers a
// leaf <span> whose whole text is current, then the first text node
// whose trimmed value is current. Whitespace around current is kept.
// When the text is split across elements neither matches, and the link
// is left as it is: its markup matters more than its label. It reports
// whether the text was replaced.
func replaceLinkText(link *html.Node, current, label string) bool {
	if span := findLeafSpan(link, current); span != nil {
		whole := textContent(span)
		for span.FirstChild != nil {
			span.RemoveChild(span.FirstChild)
		}
		span.AppendChild(text(strings.Replace(whole, current, label, 1)))
		return true
	}
	if node := findTextNode(link, current); node != nil {
		node.Data = strings.Replace(node.Data, current, label, 1)
		return true
	}
	return false
}

func findLeafSpan(node *html.Node, want string) *html.Node {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		if child.DataAtom == atom.Span && !hasElementChild(child) &&
			strings.TrimSpace(textContent(child)) == want {
			return child
		}
		if found := findLeafSpan(child, want); found != nil {
			return found
		}
	}
	return nil
}

func findTextNode(node *html.Node, want string) *html.Node {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode && strings.TrimSpace(child.Data) == want {
			return child
		}
		if found := findTextNode(child, want); found != nil {
			return found
		}
	}
	return nil
}
