package v0

const AuthorsTableName = "authors"
const AuthorsFieldID = "id"
const AuthorsFieldEmail = "email"
const AuthorsFieldName = "name"

const StatesTableName = "states"
const StatesFieldID = "id"
const StatesFieldName = "name"

const PatchesTableName = "patches"
const PatchesFieldID = "id"
const PatchesFieldName = "name"
const PatchesFieldFilename = "filename"
const PatchesFieldDate = "date"
const PatchesFieldContent = "content"
const PatchesFieldDLContent = "dlcontent"
const PatchesFieldAltID = "altid"
const PatchesFieldAuthorID = "author_id"
const PatchesFieldStateID = "state_id"

const CommentsTableName = "comments"
const CommentsFieldID = "id"
const CommentsFieldAuthorID = "author_id"
const CommentsFieldDate = "date"
const CommentsFieldContent = "content"

const MsgidsTableName = "msgids"
const MsgidsFieldID = "id"
const MsgidsFieldName = "name"

const MsgidPatchesTableName = "msgid_patches"
const MsgidPatchesFieldMsgidID = "msgid_id"
const MsgidPatchesFieldPatchID = "patch_id"

const CommentPatchesTableName = "comment_patches"
const CommentPatchesFieldCommentID = "comment_id"
const CommentPatchesFieldPatchID = "patch_id"

const BranchesTableName = "branches"
const BranchesFieldID = "id"
const BranchesFieldName = "name"

const BranchPatchesTableName = "branch_patches"
const BranchPatchesFieldBranchID = "branch_id"
const BranchPatchesFieldPatchID = "patch_id"

const AdminsTableName = "admins"
const AdminsFieldID = "id"
const AdminsFieldUsername = "username"
const AdminsFieldPassword = "password"

const VersionTableName = "patchwatch_version"
const VersionFieldID = "id"
const VersionFieldVersion = "version"
