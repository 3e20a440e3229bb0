package model

// Review models an entry in the `Reviews` table.  ReviewID is chosen by the
// author and must be unique; UserID is resolved from the session username at
// insert time.  Sentiment comes from the imported dataset and is NULL for
// reviews written through the app.
//
// Fields:
//  ID        – Reviews.review_id.
//  ProductID – Reviews.product_id (references Products, not enforced).
//  UserID    – Reviews.user_id (references Users, not enforced).
//  Title     – Reviews.review_title.
//  Content   – Reviews.review_content.
//  Sentiment – Reviews.sentiment (nullable).
type Review struct {
    ID        string
    ProductID string
    UserID    string
    Title     string
    Content   string
    Sentiment *string
}
