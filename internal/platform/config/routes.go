package config

// RouteTarget declares the controller/action pair behind a named route.
// The route registry synchronizer reconciles this table against the
// persisted route records at boot; request handlers are registered from
// the same names so the two can never drift apart.
type RouteTarget struct {
	Controller string
	Action     string
	Policies   []string
}

// Routes is the declarative route set, keyed by "<verb> <path>" with a
// lower-case verb and :param placeholders.
func Routes() map[string]RouteTarget {
	return map[string]RouteTarget{
		"post /auth/local":              {Controller: "auth", Action: "login", Policies: []string{"isAuthorized"}},
		"post /auth/local/register":     {Controller: "auth", Action: "register", Policies: []string{"isAuthorized"}},
		"get /auth/:provider/callback":  {Controller: "auth", Action: "callback", Policies: []string{"isAuthorized"}},
		"post /auth/:provider/callback": {Controller: "auth", Action: "callback", Policies: []string{"isAuthorized"}},
		"post /auth/forgot-password":    {Controller: "auth", Action: "forgotPassword", Policies: []string{"isAuthorized"}},
		"post /auth/change-password":    {Controller: "auth", Action: "changePassword", Policies: []string{"isAuthorized"}},
		"get /auth/logout":              {Controller: "auth", Action: "logout", Policies: []string{"isAuthorized"}},

		"get /user":        {Controller: "user", Action: "find", Policies: []string{"isAuthorized"}},
		"post /user":       {Controller: "user", Action: "create", Policies: []string{"isAuthorized"}},
		"get /user/:id":    {Controller: "user", Action: "findOne", Policies: []string{"isAuthorized"}},
		"put /user/:id":    {Controller: "user", Action: "update", Policies: []string{"isAuthorized"}},
		"delete /user/:id": {Controller: "user", Action: "destroy", Policies: []string{"isAuthorized"}},

		"get /article":        {Controller: "article", Action: "find", Policies: []string{"isAuthorized"}},
		"post /article":       {Controller: "article", Action: "create", Policies: []string{"isAuthorized"}},
		"get /article/:id":    {Controller: "article", Action: "findOne", Policies: []string{"isAuthorized"}},
		"put /article/:id":    {Controller: "article", Action: "update", Policies: []string{"isAuthorized"}},
		"delete /article/:id": {Controller: "article", Action: "destroy", Policies: []string{"isAuthorized"}},
	}
}
