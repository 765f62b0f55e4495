// Package auth drives one forum login attempt: it exchanges the callback
// code, loads the member profile and maps it to an identity.
//
// A Provider serves exactly one attempt. Authorization codes are single use,
// so Authenticate runs at most once per Provider; create a new one through
// Factory.New for every callback request.
//
//	p, err := factory.New(ctx)
//	if err != nil {
//		return err
//	}
//	if !p.SetCode(code).Authenticate(ctx) {
//		// p.Err() holds the reason; callers only branch on the boolean.
//		return errLoginFailed
//	}
//	user, err := resolver.Resolve(ctx, p.User())
package auth
