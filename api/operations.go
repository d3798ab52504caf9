package api

// Operation names as sent in the `operationName` field.
const (
	OpLogin                = "Login"
	OpRegister             = "Register"
	OpLogout               = "Logout"
	OpMe                   = "Me"
	OpRefreshToken         = "RefreshToken"
	OpRequestPasswordReset = "RequestPasswordReset"
	OpResetPassword        = "ResetPassword"
)

const userFields = `
            id
            username
            email
            firstName
            lastName
            roles {
                id
                name
            }
            activated`

// LoginMutation authenticates with a username and password.
const LoginMutation = `mutation Login($input: LoginInput!) {
    login(input: $input) {
        success
        message
        user {` + userFields + `
        }
    }
}`

// RegisterMutation creates an account and signs it in.
const RegisterMutation = `mutation Register($input: RegisterInput!) {
    register(input: $input) {
        success
        message
        user {` + userFields + `
        }
    }
}`

// LogoutMutation ends the server-side session and clears its cookies.
const LogoutMutation = `mutation Logout {
    logout
}`

// MeQuery returns the user behind the current session cookie, or null.
const MeQuery = `query Me {
    me {` + userFields + `
    }
}`

// RefreshTokenMutation renews the session cookies.
const RefreshTokenMutation = `mutation RefreshToken {
    refreshToken {
        success
        message
        user {
            id
        }
    }
}`

// RequestPasswordResetMutation asks the backend to mail a reset link.
const RequestPasswordResetMutation = `mutation RequestPasswordReset($email: String!) {
    requestPasswordReset(email: $email)
}`

// ResetPasswordMutation sets a new password using a mailed reset token.
const ResetPasswordMutation = `mutation ResetPassword($newPassword: String!, $token: String!) {
    resetPassword(newPassword: $newPassword, token: $token)
}`
