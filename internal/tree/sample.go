package tree

// sampleDoc is the built-in demo tree.
var sampleDoc = Document{
	Nodes: []NodeDef{
		{Name: "Inbox", Children: []NodeDef{
			{Name: "Call plumber"},
			{Name: "Renew passport"},
		}, Expanded: true},
		{Name: "Projects", Expanded: true, Children: []NodeDef{
			{Name: "treedrop", Children: []NodeDef{
				{Name: "autoscroll"},
				{Name: "adorner"},
			}},
			{Name: "garden", Children: []NodeDef{
				{Name: "tomatoes"},
				{Name: "compost"},
			}},
			{Name: "taxes", Drop: ptr(false)},
		}},
		{Name: "Pinned", Drag: ptr(false), Insert: ptr(false), Children: []NodeDef{
			{Name: "Read me", Drag: ptr(false)},
		}},
		{Name: "Archive", Drop: ptr(true), Insert: ptr(false)},
		{Name: "Trash", Drag: ptr(false)},
	},
}

// Sample returns a fresh copy of the built-in demo tree.
func Sample() *Forest {
	f, err := sampleDoc.Build()
	if err != nil {
		panic(err)
	}
	return f
}
