// Command forumauth serves forum (IPB) OAuth2 login for local accounts.
//
// Configuration is read from the environment: DATABASE_URL and
// COOKIE_SECRET are required, REDIS_URL enables the shared settings cache,
// SETTINGS_FILE seeds the oauth2_* options from YAML.
package main
