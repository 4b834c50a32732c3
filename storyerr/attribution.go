package storyerr

// Attributed is implemented by every error kind in this package that
// embeds Attribution, letting the Reporter pull story/line context out
// of an arbitrary error without a type switch over every kind.
type Attributed interface {
	error
	StoryAttribution() Attribution
}

func (e *StoryscriptError) StoryAttribution() Attribution             { return e.Attribution }
func (e *StoryscriptRuntimeError) StoryAttribution() Attribution      { return e.Attribution }
func (e *InvalidKeywordUsage) StoryAttribution() Attribution          { return e.Attribution }
func (e *ArgumentNotFoundError) StoryAttribution() Attribution        { return e.Attribution }
func (e *ArgumentTypeMismatchError) StoryAttribution() Attribution    { return e.Attribution }
func (e *InvalidCommandError) StoryAttribution() Attribution          { return e.Attribution }
func (e *ServiceNotFound) StoryAttribution() Attribution              { return e.Attribution }
func (e *ActionNotFound) StoryAttribution() Attribution               { return e.Attribution }
func (e *EnvironmentVariableNotFound) StoryAttribution() Attribution  { return e.Attribution }
func (e *ContainerSpecNotRegisteredError) StoryAttribution() Attribution { return e.Attribution }
func (e *K8sError) StoryAttribution() Attribution                     { return e.Attribution }
func (e *TypeAssertionRuntimeError) StoryAttribution() Attribution    { return e.Attribution }
func (e *TypeValueRuntimeError) StoryAttribution() Attribution        { return e.Attribution }
func (e *TooManyVolumes) StoryAttribution() Attribution               { return e.Attribution }
func (e *TooManyServices) StoryAttribution() Attribution               { return e.Attribution }

// Extract pulls story/line attribution out of err, if it implements
// Attributed. The zero Attribution is returned otherwise.
func Extract(err error) (Attribution, bool) {
	a, ok := err.(Attributed)
	if !ok {
		return Attribution{}, false
	}
	return a.StoryAttribution(), true
}
