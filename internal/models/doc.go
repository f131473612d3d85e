// Package models defines the core domain models for the avatar service.
//
// # Models
//
//   - Avatar: a named per-user avatar configuration with its measurement
//     sub-collections
//   - MorphTarget: a single named morph weight on an avatar
//   - AvatarDraft: normalized input accepted by create/update operations
//   - AvatarList: the paginated list envelope returned by the list endpoint
//   - User: a registered user account (implicitly created on first use)
//
// # Design Principles
//
//  1. **Canonical output**: every Avatar returned by the store carries its
//     sub-collections in canonical form — measurement maps are never nil and
//     morph targets are deduplicated and sorted ascending by id
//  2. **Immutable identity**: ID, UserID, Slot and CreatedAt are fixed at
//     creation; updates only touch Name, UpdatedAt and the sub-collections
//  3. **Avoid circular references**: relationships use ID strings, not
//     pointers
package models
