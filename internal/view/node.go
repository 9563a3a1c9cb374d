// Package view turns workflow snapshots into a renderer-independent tree.
package view

// Kind names what a Node represents.
type Kind string

const (
	KindPage    Kind = "page"
	KindSection Kind = "section"
	KindGroup   Kind = "group"
	KindHeading Kind = "heading"
	KindText    Kind = "text"
	KindMessage Kind = "message"
	KindForm    Kind = "form"
	KindLabel   Kind = "label"
	KindInput   Kind = "input"
	KindSelect  Kind = "select"
	KindOption  Kind = "option"
	KindButton  Kind = "button"
	KindLink    Kind = "link"
	KindCard    Kind = "card"
	KindBadge   Kind = "badge"
	KindStat    Kind = "stat"
	KindDialog  Kind = "dialog"
)

// Node is one element of a view tree. Href is the navigation or submit
// target for forms, links and buttons. Type is the input type.
type Node struct {
	Kind      Kind
	ID        string
	Class     string
	Text      string
	Name      string
	Type      string
	Value     string
	Href      string
	Attrs     map[string]string
	Disabled  bool
	Selected  bool
	Autofocus bool
	Children  []*Node
}

func el(kind Kind, id string, children ...*Node) *Node {
	return &Node{Kind: kind, ID: id, Children: children}
}

func text(kind Kind, id, s string) *Node {
	return &Node{Kind: kind, ID: id, Text: s}
}

func (n *Node) with(k, v string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[k] = v
	return n
}

func (n *Node) class(c string) *Node {
	n.Class = c
	return n
}

func (n *Node) add(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Find returns the first node in the tree with the given id.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Page wraps body in a document with a title.
func Page(title string, body ...*Node) *Node {
	return (&Node{Kind: KindPage, Text: title}).add(body...)
}

func input(id, name, typ, value string) *Node {
	return &Node{Kind: KindInput, ID: id, Name: name, Type: typ, Value: value}
}

func label(forID, s string) *Node {
	return (&Node{Kind: KindLabel, Text: s}).with("for", forID)
}

func option(value, s string, selected bool) *Node {
	return &Node{Kind: KindOption, Value: value, Text: s, Selected: selected}
}

func submit(id, s, href string) *Node {
	return &Node{Kind: KindButton, ID: id, Text: s, Href: href}
}

func field(children ...*Node) *Node {
	return el(KindGroup, "", children...).class("form-group")
}
