package twitter

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	errs "twtimg/pkg/errors"
)

// FetchBearerToken exchanges an API key and secret for an app-only bearer token
// (client credentials grant, key and secret in a Basic header). The token is kept on
// the client for later timeline requests. Failures wrap ErrBearerTokenNotFetched and
// are never retried.
func (c *Client) FetchBearerToken(ctx context.Context, apiKey, apiSecret string) (*oauth2.Token, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errs.New(errs.ErrorTypeConfig, 0, errs.ErrConfidentialsNotSupplied, "API key and secret are required")
	}

	conf := clientcredentials.Config{
		ClientID:     apiKey,
		ClientSecret: apiSecret,
		TokenURL:     TokenURL(c.baseURL),
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	c.logger.DebugWithFields("fetching bearer token", map[string]interface{}{
		"url": conf.TokenURL,
	})

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := conf.Token(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		tokenErr := classifyTokenError(err)
		c.logger.WithError(err).WarnWithFields("bearer token request rejected", map[string]interface{}{
			"status": tokenErr.Code,
		})
		return nil, tokenErr
	}

	if !strings.EqualFold(token.TokenType, "bearer") && token.TokenType != "" {
		return nil, errs.New(errs.ErrorTypeAuth, 200, errs.ErrBearerTokenNotFetched, "unexpected token type %q", token.TokenType)
	}

	c.token = token
	c.logger.Debug("bearer token fetched")
	return token, nil
}

func classifyTokenError(err error) *errs.Error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		errType := errs.ClassifyStatus(status)
		if errType == errs.ErrorTypeUnknown || errType == errs.ErrorTypeNotFound {
			errType = errs.ErrorTypeAuth
		}
		return errs.New(errType, status, errs.ErrBearerTokenNotFetched, "token endpoint returned status %d", status)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errs.New(errs.ErrorTypeNetwork, 0, errs.ErrBearerTokenNotFetched, "token request failed: %v", urlErr.Err)
	}

	// The endpoint answered 200 but without a usable token
	return errs.New(errs.ErrorTypeParsing, 200, errs.ErrBearerTokenNotFetched, "unusable token response: %v", err)
}
