package xmlproto

import "codec-generator/internal/model"

// Framing chooses the element paths enclosing document bodies. The last
// element of a path is the one holding the structure's members; the first is
// the document root.
type Framing interface {
	InputPath(op, s *model.Shape) []string
	OutputPath(op, s *model.Shape) []string
	ErrorPath(s *model.Shape) []string
}

// RootElement is the element name of a structure written as a document root:
// its xmlName trait, else the shape name.
func RootElement(s *model.Shape) string {
	if name, ok := s.XMLName(); ok {
		return name
	}

	return s.Name()
}

// RestFraming is the restXml framing: bodies are rooted at the structure's
// own element and errors sit in ErrorResponse/Error.
type RestFraming struct{}

// InputPath implements Framing.
func (RestFraming) InputPath(_, s *model.Shape) []string {
	return []string{RootElement(s)}
}

// OutputPath implements Framing.
func (RestFraming) OutputPath(_, s *model.Shape) []string {
	return []string{RootElement(s)}
}

// ErrorPath implements Framing.
func (RestFraming) ErrorPath(*model.Shape) []string {
	return []string{"ErrorResponse", "Error"}
}
