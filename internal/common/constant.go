package common

// AppName is used in prompts, log banners and backup metadata.
const AppName = "Soldier Sign-out System"

// PassphraseEnvVar is the default environment variable consulted for the
// vault master passphrase.
const PassphraseEnvVar = "SIGNOUT_VAULT_PASSPHRASE"
