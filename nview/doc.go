/*
Package nview serves HTTP requests from nlet namespaces.

A namespace that declares one or more HTTP verbs (get, post, put,
patch, delete, head, options, trace) becomes an http.Handler.  For
each request the namespace is extended with Let so that descriptors
can ask for the request by name:

	view      the handler
	request   *nview.Request
	response  http.ResponseWriter
	args      route variable values in template order
	kwargs    route variables by name
	user      the authenticated user, from request.User

and then the name of the verb is resolved.  The value resolved is the
response.  A Caller (such as a *nop.Operation) is called first and its
result is used instead.  An http.Handler is served.  nil gives 204.
Strings and byte slices are written as they are.  Anything else is
encoded as JSON unless WithEncoder says otherwise.

Errors become status codes with ReturnCode and its helpers.  Other
errors, including resolution errors, are 500.

Form views

FormHandler adds form processing: POST and PUT fill a new instance of
the struct behind form_cls from the request form and resolve
form_valid or form_invalid.
*/
package nview
