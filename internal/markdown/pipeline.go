// Package markdown turns the constrained markdown produced by the summary
// generator into an HTML fragment.
//
// The default renderer is a fixed sequence of text substitutions; each
// stage sees the output of the one before it, so the order of Fragment is
// part of its behaviour. It is not a general markdown parser and does not
// escape or sanitize its input.
package markdown

// Stage is a single named text transform.
type Stage struct {
	Name  string
	Apply func(string) string
}

// Pipeline applies its stages in order.
type Pipeline []Stage

// Render runs s through every stage of p.
func (p Pipeline) Render(s string) string {
	for _, st := range p {
		s = st.Apply(s)
	}
	return s
}

// Stage returns the stage with the given name.
func (p Pipeline) Stage(name string) (Stage, bool) {
	for _, st := range p {
		if st.Name == name {
			return st, true
		}
	}
	return Stage{}, false
}

// Fragment is the summary renderer used by the front end.
var Fragment = Pipeline{
	{Name: "newlines", Apply: newlines},
	{Name: "headers", Apply: headers},
	{Name: "bold", Apply: bold},
	{Name: "list-items", Apply: listItems},
	{Name: "lists", Apply: lists},
	{Name: "paragraphs", Apply: paragraphs},
	{Name: "line-breaks", Apply: lineBreaks},
	{Name: "wrap", Apply: wrap},
	{Name: "cleanup", Apply: cleanup},
}

// Render converts text to an HTML fragment with the Fragment pipeline.
func Render(text string) string {
	return Fragment.Render(text)
}
