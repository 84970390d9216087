package component

// SpriteTag is the registry tag of Sprite.
const SpriteTag = "sprite"

// Sprite is a textured, tinted and transformed drawable.
type Sprite struct {
	*Composite
}

func NewSprite(name string) *Sprite {
	texture, err := NewFile("texture", "")
	if err != nil {
		panic(err)
	}
	return &Sprite{Composite: mustComposite(SpriteTag, name,
		texture,
		NewColor("tint"),
		NewTransform("transform"),
	)}
}

func (s *Sprite) Texture() *File { return s.Child("texture").(*File) }

func (s *Sprite) Tint() *Color { return s.Child("tint").(*Color) }

func (s *Sprite) Transform() *Transform { return s.Child("transform").(*Transform) }

func (s *Sprite) Copy() Component { return &Sprite{Composite: s.clone()} }

func SpriteFactory(name string, initial any) (Component, error) {
	s := NewSprite(name)
	if err := s.assign(initial); err != nil {
		return nil, err
	}
	return s, nil
}
