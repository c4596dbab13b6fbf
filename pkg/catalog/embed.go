package catalog

import _ "embed"

//go:embed schema/forms.yaml
var defaultDocument []byte
