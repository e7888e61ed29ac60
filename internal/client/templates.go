package client

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Endpoint templates of the IRIS REST API, relative to the api root
const (
	SessionURL          = "api/session.json"
	TouchProjectURL     = "api/session/{sessionID}/project/{projectID}/touch"
	UpdateProjectURL    = "api/session/{sessionID}/project/{projectID}"
	TouchImageURL       = "api/session/{sessionID}/project/{projectID}/image/{imageID}/touch"
	LabelingProgressURL = "api/session/{sessionID}/project/{projectID}/image/{imageID}/progress"

	ProjectUsersURL        = "api/settings/{projectID}/users.json"
	ImageAccessChangeURL   = "api/settings/user/{userID}/project/{projectID}/image/{imageID}/access.json"
	UserImagesURL          = "api/settings/user/{userID}/project/{projectID}/images.json"
	ProjectAccessChangeURL = "api/settings/user/{userID}/project/{projectID}/access.json"
	ProjectSyncURL         = "api/admin/project/{projectID}/user/{userID}/synchronize.json"
)

// Params maps placeholder names (without braces) to values
type Params map[string]string

var placeholder = regexp.MustCompile(`\{([A-Za-z]+)\}`)

// Expand substitutes every {name} placeholder of template with the
// path-escaped value of params[name]. A placeholder without a value, or with
// an empty one, is an error.
func Expand(template string, params Params) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok || v == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("url template %q: no value for %s", template, strings.Join(missing, ", "))
	}
	return out, nil
}
